// internal/models/customer.go
package models

// Customer is a registered buyer. Phone numbers are unique and stored in a
// normalized +91-prefixed form; guest customers created by the assistant get
// a synthetic "GUEST-..." phone instead.
type Customer struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	LanguagePreference string `json:"languagePreference"`
}
