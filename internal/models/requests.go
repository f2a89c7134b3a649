package models

// Auth request bodies. Every auth call carries device info and a country
// code, mirroring what the mobile client sends.

type RegisterRequest struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	DeviceInfo  DeviceInfo `json:"device_info"`
	CountryCode string     `json:"country_code"`
}

type LoginRequest struct {
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Password    string     `json:"password"`
	DeviceInfo  DeviceInfo `json:"device_info"`
	CountryCode string     `json:"country_code"`
}

type VerifyAccountRequest struct {
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Password    string     `json:"password"`
	OTP         string     `json:"otp"`
	DeviceInfo  DeviceInfo `json:"device_info"`
	CountryCode string     `json:"country_code"`
}

type SendVerificationRequest struct {
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	DeviceInfo  DeviceInfo `json:"device_info"`
	CountryCode string     `json:"country_code"`
}

type ResetPasswordSubmitRequest struct {
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	NewPassword string     `json:"new_password"`
	OTP         string     `json:"otp"`
	DeviceInfo  DeviceInfo `json:"device_info"`
	CountryCode string     `json:"country_code"`
}

// AuthResponse is the common envelope of auth endpoints.
type AuthResponse struct {
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	Data        *User  `json:"data,omitempty"`
}

// Transfer request/response bodies.

type TagTransferRequest struct {
	RecipientTag string  `json:"recipient_tag"`
	Amount       float64 `json:"amount"`
	Reason       string  `json:"reason,omitempty"`
	PaymentPin   string  `json:"payment_pin"`
}

// TagTransferResult is the payload of a 201 tag transfer: the refreshed
// sender profile and the internal reference for the receipt screen.
type TagTransferResult struct {
	Sender      User   `json:"sender"`
	InternalRef string `json:"internal_ref"`
}

type TagTransferResponse struct {
	Data TagTransferResult `json:"data"`
}

type BankTransferRequest struct {
	Amount        float64 `json:"amount"`
	RecipientCode string  `json:"recipient_code"`
	Reason        string  `json:"reason,omitempty"`
	PaymentPin    string  `json:"payment_pin"`
}

type BankTransferResult struct {
	Reference string `json:"reference"`
}

// Recipient resolution bodies.

type BankRecipientRequest struct {
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	Description   string `json:"description,omitempty"`
}

type BankRecipientResponse struct {
	Recipient struct {
		RecipientCode string `json:"recipient_code"`
		Details       struct {
			AccountName string `json:"account_name"`
		} `json:"details"`
	} `json:"recipient"`
}

type TagLookupResponse struct {
	Data struct {
		Tagname     string `json:"tagname"`
		DisplayName string `json:"display_name"`
	} `json:"data"`
}

type NetworkStatusResponse struct {
	NetworkStatus float64 `json:"network_status"`
}

// Misc bodies.

type SetTagRequest struct {
	Tagname string `json:"tagname"`
}

type SetPaymentPinRequest struct {
	PaymentPin string `json:"payment_pin"`
}

type ReportTransactionRequest struct {
	Comment string `json:"comment"`
}

type TransactionListResponse struct {
	Data []Transaction `json:"data"`
}

type TransactionDetailResponse struct {
	Data Transaction `json:"data"`
}

type BankDirectoryResponse struct {
	Status bool   `json:"status"`
	Data   []Bank `json:"data"`
}

type UserResponse struct {
	Data *User `json:"data,omitempty"`
}
