package models

// RecipientDescriptor is the canonical result of resolving a transfer
// recipient. Handle is opaque: the tag echoed back for tag transfers, a
// recipient_code for bank transfers. Validated is true only after a
// successful resolver round-trip for the currently entered identifier and
// must be reset whenever that identifier changes.
type RecipientDescriptor struct {
	DisplayName string
	Handle      string
	Validated   bool
}
