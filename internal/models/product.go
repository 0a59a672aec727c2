// internal/models/product.go
package models

// Product is a catalog item with live stock counts.
type Product struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	StockQuantity    int     `json:"stockQuantity"`
	ReorderThreshold int     `json:"reorderThreshold"`
}

// NeedsReorder reports whether stock has fallen to the reorder threshold.
func (p Product) NeedsReorder() bool {
	return p.StockQuantity <= p.ReorderThreshold
}
