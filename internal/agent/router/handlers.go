// internal/agent/router/handlers.go
package router

import (
	"context"
	"fmt"
	"strings"

	"bazaar-workers/internal/agent/extract"
	"bazaar-workers/internal/agent/intent"
	"bazaar-workers/internal/agent/match"
	"bazaar-workers/internal/models"
)

func (r *Router) handleCreateOrder(ctx context.Context, it intent.Intent, message string) (ActionResult, error) {
	customerName, ok := entityString(it.Entities, extract.KeyCustomerName)
	if !ok {
		return ActionResult{
			Status:  StatusMissingInfo,
			Message: "Please provide customer name",
			Missing: []string{extract.KeyCustomerName},
		}, nil
	}
	productName, ok := entityString(it.Entities, extract.KeyProductName)
	if !ok {
		return ActionResult{
			Status:  StatusMissingInfo,
			Message: "Please provide product name",
			Missing: []string{extract.KeyProductName},
		}, nil
	}

	customer, err := r.lookupCustomer(ctx, it.Entities, customerName)
	if err != nil {
		return ActionResult{}, err
	}
	isNew := false
	if customer == nil {
		phone, ok := entityString(it.Entities, extract.KeyPhone)
		if !ok {
			phone = r.guestPhone()
		}
		customer, err = r.customers.Create(ctx, customerName, phone, r.guestLanguage)
		if err != nil {
			return ActionResult{
				Status:  StatusError,
				Message: fmt.Sprintf("Could not create customer: %s", err.Error()),
			}, nil
		}
		isNew = true
		r.audit(ctx, auditAutoCreatedCustomer, message,
			fmt.Sprintf("Auto-created customer %s (Phone: %s)", customer.Name, customer.Phone))
	}

	products, err := r.products.ListAll(ctx)
	if err != nil {
		return ActionResult{}, err
	}
	product := bestProduct(productName, products)
	if product == nil {
		return ActionResult{
			Status:            StatusProductNotFound,
			Message:           fmt.Sprintf("Product '%s' not found", productName),
			AvailableProducts: productNames(products, 10),
		}, nil
	}

	quantity := 1
	if q, ok := entityInt(it.Entities, extract.KeyQuantity); ok {
		quantity = q
	}

	if product.StockQuantity < quantity {
		return ActionResult{
			Status:    StatusInsufficientStock,
			Message:   fmt.Sprintf("Only %d %s available", product.StockQuantity, product.Name),
			Available: intRef(product.StockQuantity),
			Requested: quantity,
		}, nil
	}

	order, err := r.orders.Create(ctx, customer.ID, []models.OrderItemInput{
		{ProductID: product.ID, Quantity: quantity},
	})
	if err != nil {
		return ActionResult{}, err
	}

	invoice, err := r.invoices.Generate(ctx, order.ID)
	if err != nil {
		return ActionResult{}, err
	}

	r.audit(ctx, auditOrderCreated, message,
		fmt.Sprintf("Order #%d created & Invoice generated for %s, Total: ₹%.2f",
			order.ID, customer.Name, order.OrderTotal))

	suffix := ""
	if isNew {
		suffix = " (New Customer Auto-Created)"
	}
	return ActionResult{
		Status:      StatusSuccess,
		Message:     fmt.Sprintf("Order created and invoice generated! Order ID: %d%s", order.ID, suffix),
		OrderID:     order.ID,
		InvoiceID:   invoice.ID,
		Customer:    customer.Name,
		Product:     product.Name,
		Quantity:    quantity,
		Total:       order.OrderTotal,
		DownloadURL: r.downloadURL(invoice.ID),
	}, nil
}

// lookupCustomer finds an existing customer by phone when one was given,
// then by strict fuzzy name match. Returns (nil, nil) when nobody matches;
// the caller decides whether to auto-register.
func (r *Router) lookupCustomer(ctx context.Context, entities map[string]interface{}, customerName string) (*models.Customer, error) {
	if phone, ok := entityString(entities, extract.KeyPhone); ok {
		customer, err := r.customers.GetByPhone(ctx, phone)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			return customer, nil
		}
	}

	customers, err := r.customers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(customers))
	for i, c := range customers {
		names[i] = strings.ToLower(c.Name)
	}
	if hit := match.ClosestMatch(strings.ToLower(customerName), names, customerMatchCutoff); hit != "" {
		for i, name := range names {
			if name == hit {
				return &customers[i], nil
			}
		}
	}
	return nil, nil
}

// guestPhone builds a synthetic unique phone for auto-registered guests.
func (r *Router) guestPhone() string {
	return fmt.Sprintf("GUEST-%d%d", r.now().Unix(), 100+r.randInt(900))
}

func (r *Router) handleCheckInventory(ctx context.Context, it intent.Intent, message string) (ActionResult, error) {
	productName, ok := entityString(it.Entities, extract.KeyProductName)
	if !ok {
		lowStock, err := r.products.ListLowStock(ctx)
		if err != nil {
			return ActionResult{}, err
		}
		items := make([]LowStockItem, len(lowStock))
		for i, p := range lowStock {
			items[i] = LowStockItem{Name: p.Name, Stock: p.StockQuantity, Threshold: p.ReorderThreshold}
		}
		return ActionResult{
			Status:           StatusSuccess,
			Message:          fmt.Sprintf("Found %d products with low stock", len(lowStock)),
			LowStockProducts: items,
		}, nil
	}

	products, err := r.products.ListAll(ctx)
	if err != nil {
		return ActionResult{}, err
	}
	product := bestProduct(productName, products)
	if product == nil {
		return ActionResult{
			Status:            StatusProductNotFound,
			Message:           fmt.Sprintf("Product '%s' not found", productName),
			AvailableProducts: productNames(products, 10),
			Suggestion:        "Try one of the available products",
		}, nil
	}

	r.audit(ctx, auditInventoryChecked, message,
		fmt.Sprintf("Stock for %s: %d units", product.Name, product.StockQuantity))

	return ActionResult{
		Status:       StatusSuccess,
		Message:      fmt.Sprintf("%s: %d units available at ₹%v", product.Name, product.StockQuantity, product.Price),
		Product:      product.Name,
		Stock:        product.StockQuantity,
		Price:        product.Price,
		NeedsReorder: boolRef(product.NeedsReorder()),
	}, nil
}

func (r *Router) handleListProducts(ctx context.Context) (ActionResult, error) {
	products, err := r.products.ListAll(ctx)
	if err != nil {
		return ActionResult{
			Status:  StatusError,
			Message: fmt.Sprintf("Error fetching products: %s", err.Error()),
		}, nil
	}
	if len(products) == 0 {
		return ActionResult{
			Status:  StatusError,
			Message: "No products found in inventory",
		}, nil
	}

	summaries := make([]ProductSummary, len(products))
	for i, p := range products {
		summaries[i] = ProductSummary{
			Name:         p.Name,
			Stock:        p.StockQuantity,
			Price:        p.Price,
			NeedsReorder: p.NeedsReorder(),
		}
	}
	return ActionResult{
		Status:     StatusSuccess,
		Message:    fmt.Sprintf("Found %d products", len(products)),
		Products:   summaries,
		TotalCount: len(products),
	}, nil
}

func (r *Router) handleAddProduct(ctx context.Context, it intent.Intent, message string) (ActionResult, error) {
	productName, ok := entityString(it.Entities, extract.KeyProductName)
	if !ok {
		return ActionResult{
			Status:  StatusMissingInfo,
			Message: "Please provide product name",
			Missing: []string{extract.KeyProductName},
			Example: "Add product Laptop price 50000 stock 10",
		}, nil
	}
	price, ok := entityFloat(it.Entities, extract.KeyPrice)
	if !ok {
		return ActionResult{
			Status:  StatusMissingInfo,
			Message: fmt.Sprintf("Please provide price for %s", productName),
			Missing: []string{extract.KeyPrice},
			Example: fmt.Sprintf("Add %s price 5000 stock 20", productName),
		}, nil
	}
	quantity, ok := entityInt(it.Entities, extract.KeyQuantity)
	if !ok {
		return ActionResult{
			Status:  StatusMissingInfo,
			Message: fmt.Sprintf("Please provide stock quantity for %s", productName),
			Missing: []string{extract.KeyQuantity},
			Example: fmt.Sprintf("Add %s price %v stock 15", productName, price),
		}, nil
	}

	products, err := r.products.ListAll(ctx)
	if err != nil {
		return ActionResult{}, err
	}

	// The matcher is lenient; only treat its pick as the same product when
	// one name contains the other, otherwise "Pen" would swallow "Pencil
	// Box" restocks.
	existing := bestProduct(productName, products)
	isMatch := false
	if existing != nil {
		s := strings.ToLower(strings.TrimSpace(productName))
		p := strings.ToLower(strings.TrimSpace(existing.Name))
		if s == p || strings.Contains(p, s) || strings.Contains(s, p) {
			isMatch = true
		}
	}

	var (
		product    *models.Product
		actionType string
		successMsg string
	)
	if isMatch {
		var threshold *int
		if t, ok := entityInt(it.Entities, "reorder_threshold"); ok {
			threshold = &t
		}
		product, err = r.products.Restock(ctx, existing.ID, quantity, price, threshold)
		if err != nil {
			return ActionResult{}, err
		}
		actionType = auditProductUpdated
		successMsg = fmt.Sprintf("Updated stock for '%s'!", product.Name)
	} else {
		threshold := defaultReorderThreshold
		if t, ok := entityInt(it.Entities, "reorder_threshold"); ok {
			threshold = t
		}
		product, err = r.products.Create(ctx, productName, price, quantity, threshold)
		if err != nil {
			return ActionResult{}, err
		}
		actionType = auditProductAdded
		successMsg = fmt.Sprintf("Product '%s' added successfully!", product.Name)
	}

	r.audit(ctx, actionType, message, fmt.Sprintf("%s (ID: %d)", successMsg, product.ID))

	return ActionResult{
		Status:           StatusSuccess,
		Message:          successMsg,
		ProductID:        product.ID,
		ProductName:      product.Name,
		Price:            product.Price,
		Stock:            product.StockQuantity,
		ReorderThreshold: product.ReorderThreshold,
	}, nil
}

func (r *Router) handleGenerateInvoice(ctx context.Context, it intent.Intent, message string) (ActionResult, error) {
	orderID, ok := entityInt(it.Entities, extract.KeyOrderID)
	if !ok {
		return ActionResult{
			Status:  StatusMissingInfo,
			Message: "Please provide order ID",
			Missing: []string{extract.KeyOrderID},
		}, nil
	}

	order, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return ActionResult{}, err
	}
	if order == nil {
		return ActionResult{
			Status:  StatusOrderNotFound,
			Message: fmt.Sprintf("Order #%d not found", orderID),
		}, nil
	}

	invoice, err := r.invoices.Generate(ctx, orderID)
	if err != nil {
		return ActionResult{}, err
	}

	r.audit(ctx, auditInvoiceGenerated, message,
		fmt.Sprintf("Invoice #%d generated for Order #%d", invoice.ID, orderID))

	return ActionResult{
		Status:      StatusSuccess,
		Message:     "Invoice generated successfully!",
		InvoiceID:   invoice.ID,
		OrderID:     orderID,
		FilePath:    invoice.FilePath,
		DownloadURL: r.downloadURL(invoice.ID),
	}, nil
}

func (r *Router) handleAddCustomer(ctx context.Context, it intent.Intent, message string) (ActionResult, error) {
	customerName, ok := entityString(it.Entities, extract.KeyCustomerName)
	if !ok {
		return ActionResult{
			Status:  StatusMissingInfo,
			Message: "Please provide customer name",
			Missing: []string{extract.KeyCustomerName},
		}, nil
	}
	phone, ok := entityString(it.Entities, extract.KeyPhone)
	if !ok {
		return ActionResult{
			Status:  StatusMissingInfo,
			Message: "Please provide phone number",
			Missing: []string{extract.KeyPhone},
		}, nil
	}

	existing, err := r.customers.GetByPhone(ctx, phone)
	if err != nil {
		return ActionResult{}, err
	}
	if existing != nil {
		return ActionResult{
			Status:       StatusAlreadyExists,
			Message:      fmt.Sprintf("Customer with phone %s already exists", phone),
			CustomerID:   existing.ID,
			CustomerName: existing.Name,
		}, nil
	}

	customer, err := r.customers.Create(ctx, customerName, phone, r.guestLanguage)
	if err != nil {
		return ActionResult{}, err
	}

	r.audit(ctx, auditCustomerAdded, message,
		fmt.Sprintf("Customer %s added with ID %d", customer.Name, customer.ID))

	return ActionResult{
		Status:       StatusSuccess,
		Message:      fmt.Sprintf("Customer '%s' added successfully!", customer.Name),
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Phone:        customer.Phone,
	}, nil
}

func (r *Router) handlePaymentReminder(ctx context.Context, it intent.Intent, message string) (ActionResult, error) {
	customerName, ok := entityString(it.Entities, extract.KeyCustomerName)
	if !ok {
		customerName = "customer"
	}

	r.audit(ctx, auditPaymentReminder, message,
		fmt.Sprintf("Payment reminder suggested for %s", customerName))

	return ActionResult{
		Status:  StatusSuggestion,
		Message: fmt.Sprintf("Payment reminder suggestion for %s", customerName),
		SuggestedMessage: fmt.Sprintf(
			"Dear %s, this is a friendly reminder about your pending payment. "+
				"Please clear your dues at your earliest convenience. Thank you!", customerName),
		Channels: []string{"SMS", "WhatsApp", "Email"},
		Note:     "This is a suggestion. Actual sending requires integration with messaging services.",
	}, nil
}

func (r *Router) downloadURL(invoiceID int) string {
	return fmt.Sprintf("%s/%d/download", r.downloadBase, invoiceID)
}

func bestProduct(term string, products []models.Product) *models.Product {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	idx := match.BestMatch(term, names)
	if idx < 0 {
		return nil
	}
	return &products[idx]
}

func productNames(products []models.Product, limit int) []string {
	if len(products) < limit {
		limit = len(products)
	}
	names := make([]string, limit)
	for i := 0; i < limit; i++ {
		names[i] = products[i].Name
	}
	return names
}

// Entities that crossed the session store come back JSON-decoded, so
// numbers arrive as float64; fresh extractions carry native ints. The
// coercers accept both.

func entityString(entities map[string]interface{}, key string) (string, bool) {
	v, ok := entities[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func entityInt(entities map[string]interface{}, key string) (int, bool) {
	v, ok := entities[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func intRef(n int) *int { return &n }

func boolRef(b bool) *bool { return &b }

func entityFloat(entities map[string]interface{}, key string) (float64, bool) {
	v, ok := entities[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
