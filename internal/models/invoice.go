// internal/models/invoice.go
package models

import "time"

// Invoice is the record of a generated invoice file. At most one invoice
// exists per order.
type Invoice struct {
	ID        int       `json:"id"`
	OrderID   int       `json:"orderId"`
	FilePath  string    `json:"filePath"`
	CreatedAt time.Time `json:"createdAt"`
}
