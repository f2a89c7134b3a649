// Package models defines the wire types exchanged with the wallet API.
package models

import "time"

// AccountSnapshot is the account state the server embeds in user payloads.
// The client caches the latest snapshot it has seen and treats it as the
// authoritative balance for local validation.
type AccountSnapshot struct {
	Tagname     string  `json:"tagname"`
	NGBalance   float64 `json:"ng_balance"`
	CountryCode string  `json:"country_code,omitempty"`
}

// User is the authenticated user profile returned by the API.
type User struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone,omitempty"`
	Account AccountSnapshot `json:"account_id"`
}

// Transaction is a single entry from the transaction history.
type Transaction struct {
	InternalRef  string    `json:"internal_ref"`
	Type         string    `json:"type"`
	Amount       float64   `json:"amount"`
	Reason       string    `json:"reason,omitempty"`
	Status       string    `json:"status"`
	SenderTag    string    `json:"sender_tag,omitempty"`
	RecipientTag string    `json:"recipient_tag,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Bank is one entry of the bank directory.
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
