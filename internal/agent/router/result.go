// internal/agent/router/result.go
package router

// Action result statuses.
const (
	StatusSuccess           = "success"
	StatusMissingInfo       = "missing_info"
	StatusError             = "error"
	StatusProductNotFound   = "product_not_found"
	StatusOrderNotFound     = "order_not_found"
	StatusInsufficientStock = "insufficient_stock"
	StatusAlreadyExists     = "already_exists"
	StatusUnknownIntent     = "unknown_intent"
	StatusSuggestion        = "suggestion"
)

// ProductSummary is one row of a product listing.
type ProductSummary struct {
	Name         string  `json:"name"`
	Stock        int     `json:"stock"`
	Price        float64 `json:"price"`
	NeedsReorder bool    `json:"needs_reorder"`
}

// LowStockItem is one row of the low-stock report.
type LowStockItem struct {
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// ActionResult is the outcome of executing an intent. Status is always
// set; every other field is populated only by the statuses that need it and
// omitted from JSON otherwise.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	// missing_info
	Missing []string `json:"missing,omitempty"`
	Example string   `json:"example,omitempty"`

	// unknown_intent
	Suggestions []string `json:"suggestions,omitempty"`

	// product_not_found
	AvailableProducts []string `json:"available_products,omitempty"`
	Suggestion        string   `json:"suggestion,omitempty"`

	// insufficient_stock. Available is a pointer so a zero-stock product
	// still serializes "available": 0.
	Available *int `json:"available,omitempty"`
	Requested int  `json:"requested,omitempty"`

	// order / invoice outcomes
	OrderID     int     `json:"order_id,omitempty"`
	InvoiceID   int     `json:"invoice_id,omitempty"`
	Customer    string  `json:"customer,omitempty"`
	Product     string  `json:"product,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	Total       float64 `json:"total,omitempty"`
	FilePath    string  `json:"file_path,omitempty"`
	DownloadURL string  `json:"download_url,omitempty"`

	// customer outcomes
	CustomerID   int    `json:"customer_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	Phone        string `json:"phone,omitempty"`

	// product outcomes
	ProductID        int     `json:"product_id,omitempty"`
	ProductName      string  `json:"product_name,omitempty"`
	Price            float64 `json:"price,omitempty"`
	Stock            int     `json:"stock,omitempty"`
	ReorderThreshold int     `json:"reorder_threshold,omitempty"`
	NeedsReorder     *bool   `json:"needs_reorder,omitempty"`

	// listings
	Products          []ProductSummary `json:"products,omitempty"`
	TotalCount        int              `json:"total_count,omitempty"`
	LowStockProducts  []LowStockItem   `json:"low_stock_products,omitempty"`

	// payment reminder suggestion
	SuggestedMessage string   `json:"suggested_message,omitempty"`
	Channels         []string `json:"channels,omitempty"`
	Note             string   `json:"note,omitempty"`
}

// Response is the full outcome of processing one message.
type Response struct {
	Intent          string                 `json:"intent"`
	Confidence      float64                `json:"confidence"`
	Entities        map[string]interface{} `json:"entities"`
	ActionResult    ActionResult           `json:"action_result"`
	OriginalMessage string                 `json:"original_message"`
}
