// internal/agent/router/router_test.go
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar-workers/internal/agent/session"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/models"
)

type fakeCustomers struct {
	customers []models.Customer
	nextID    int
	createErr error
}

func (f *fakeCustomers) GetByPhone(_ context.Context, phone string) (*models.Customer, error) {
	for i := range f.customers {
		if f.customers[i].Phone == phone {
			return &f.customers[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCustomers) ListAll(_ context.Context) ([]models.Customer, error) {
	return f.customers, nil
}

func (f *fakeCustomers) Create(_ context.Context, name, phone, lang string) (*models.Customer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := models.Customer{ID: f.nextID, Name: name, Phone: phone, LanguagePreference: lang}
	f.customers = append(f.customers, c)
	return &c, nil
}

type fakeProducts struct {
	products []models.Product
	nextID   int
	listErr  error
}

func (f *fakeProducts) ListAll(_ context.Context) ([]models.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeProducts) ListLowStock(_ context.Context) ([]models.Product, error) {
	var low []models.Product
	for _, p := range f.products {
		if p.NeedsReorder() {
			low = append(low, p)
		}
	}
	return low, nil
}

func (f *fakeProducts) Create(_ context.Context, name string, price float64, stock, threshold int) (*models.Product, error) {
	f.nextID++
	p := models.Product{ID: f.nextID, Name: name, Price: price, StockQuantity: stock, ReorderThreshold: threshold}
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeProducts) Restock(_ context.Context, id, quantity int, price float64, threshold *int) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].StockQuantity += quantity
			f.products[i].Price = price
			if threshold != nil {
				f.products[i].ReorderThreshold = *threshold
			}
			return &f.products[i], nil
		}
	}
	return nil, errors.New("product not found")
}

type fakeOrders struct {
	catalog   *fakeProducts
	orders    map[int]models.Order
	nextID    int
	createErr error
}

func (f *fakeOrders) Get(_ context.Context, id int) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (f *fakeOrders) Create(_ context.Context, customerID int, items []models.OrderItemInput) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	total := 0.0
	for _, it := range items {
		for i := range f.catalog.products {
			if f.catalog.products[i].ID == it.ProductID {
				total += float64(it.Quantity) * f.catalog.products[i].Price
				f.catalog.products[i].StockQuantity -= it.Quantity
			}
		}
	}
	o := models.Order{ID: f.nextID, CustomerID: customerID, OrderTotal: total, Status: "pending"}
	if f.orders == nil {
		f.orders = map[int]models.Order{}
	}
	f.orders[f.nextID] = o
	return &o, nil
}

type fakeInvoices struct{}

func (fakeInvoices) Generate(_ context.Context, orderID int) (*models.Invoice, error) {
	return &models.Invoice{
		ID:       orderID + 100,
		OrderID:  orderID,
		FilePath: fmt.Sprintf("invoices/invoice_%d.pdf", orderID),
	}, nil
}

type auditRecord struct {
	actionType string
	input      string
	output     string
}

type fakeAudit struct {
	records []auditRecord
}

func (f *fakeAudit) Record(_ context.Context, actionType, input, output string) error {
	f.records = append(f.records, auditRecord{actionType, input, output})
	return nil
}

func (f *fakeAudit) types() []string {
	var out []string
	for _, rec := range f.records {
		out = append(out, rec.actionType)
	}
	return out
}

type fixture struct {
	router    *Router
	customers *fakeCustomers
	products  *fakeProducts
	orders    *fakeOrders
	audit     *fakeAudit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	customers := &fakeCustomers{}
	products := &fakeProducts{}
	orders := &fakeOrders{catalog: products}
	audit := &fakeAudit{}

	r := New(Options{
		Sessions:  session.NewMemoryStore(time.Minute),
		Customers: customers,
		Products:  products,
		Orders:    orders,
		Invoices:  fakeInvoices{},
		Audit:     audit,
		Logger:    logger.NewTestLogger(t),
	})
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	r.randInt = func(int) int { return 323 }

	return &fixture{router: r, customers: customers, products: products, orders: orders, audit: audit}
}

func (f *fixture) seedProducts(products ...models.Product) {
	f.products.products = append(f.products.products, products...)
	for _, p := range products {
		if p.ID > f.products.nextID {
			f.products.nextID = p.ID
		}
	}
}

func TestProcessCreateOrderFuzzyProductAndGuestCustomer(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(
		models.Product{ID: 1, Name: "Laptop", Price: 50000, StockQuantity: 10, ReorderThreshold: 2},
		models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50, ReorderThreshold: 5},
	)

	resp, err := f.router.Process(context.Background(), "s1", "Order 2 laptops for Rahul")
	require.NoError(t, err)

	assert.Equal(t, "create_order", resp.Intent)
	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, "Laptop", resp.ActionResult.Product)
	assert.Equal(t, 2, resp.ActionResult.Quantity)
	assert.Equal(t, "Rahul", resp.ActionResult.Customer)
	assert.InDelta(t, 100000.0, resp.ActionResult.Total, 1e-9)
	assert.Equal(t, "/api/v1/invoices/101/download", resp.ActionResult.DownloadURL)
	assert.Equal(t, "Order 2 laptops for Rahul", resp.OriginalMessage)

	// Stock was decremented through the order path.
	assert.Equal(t, 8, f.products.products[0].StockQuantity)

	// The guest customer got a synthetic phone.
	require.Len(t, f.customers.customers, 1)
	assert.Equal(t, "GUEST-1700000000423", f.customers.customers[0].Phone)
	assert.Equal(t, "en", f.customers.customers[0].LanguagePreference)

	assert.Equal(t, []string{
		"AI_INTENT_DETECTED_CREATE_ORDER",
		"AI_AUTO_CREATED_CUSTOMER",
		"AI_ORDER_CREATED",
	}, f.audit.types())
}

func TestConfiguredGuestLanguageReachesCustomerCreation(t *testing.T) {
	customers := &fakeCustomers{}
	products := &fakeProducts{}
	products.products = []models.Product{{ID: 1, Name: "Laptop", Price: 50000, StockQuantity: 10, ReorderThreshold: 2}}
	products.nextID = 1

	r := New(Options{
		Sessions:      session.NewMemoryStore(time.Minute),
		Customers:     customers,
		Products:      products,
		Orders:        &fakeOrders{catalog: products},
		Invoices:      fakeInvoices{},
		Audit:         &fakeAudit{},
		Logger:        logger.NewTestLogger(t),
		GuestLanguage: "hi",
	})

	// Auto-created guests inherit the configured language.
	resp, err := r.Process(context.Background(), "s1", "Order 2 laptops for Rahul")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, resp.ActionResult.Status)
	require.Len(t, customers.customers, 1)
	assert.Equal(t, "hi", customers.customers[0].LanguagePreference)

	// So do explicitly registered customers.
	resp, err = r.Process(context.Background(), "s1", "new customer Priya 9876543210")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, resp.ActionResult.Status)
	require.Len(t, customers.customers, 2)
	assert.Equal(t, "hi", customers.customers[1].LanguagePreference)
}

func TestProcessCreateOrderExistingCustomerByPhone(t *testing.T) {
	f := newFixture(t)
	f.customers.customers = []models.Customer{{ID: 7, Name: "Rahul Verma", Phone: "+919876543210"}}
	f.customers.nextID = 7
	f.seedProducts(models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50, ReorderThreshold: 5})

	resp, err := f.router.Process(context.Background(), "s1", "order 1 mouse for rahul phone 9876543210")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, "Rahul Verma", resp.ActionResult.Customer)
	assert.Equal(t, 1, resp.ActionResult.Quantity)
	// Nobody was auto-created.
	assert.Len(t, f.customers.customers, 1)
	assert.NotContains(t, f.audit.types(), "AI_AUTO_CREATED_CUSTOMER")
}

func TestProcessCreateOrderInsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 3, ReorderThreshold: 5})

	resp, err := f.router.Process(context.Background(), "s1", "order 5 mouse for Rahul")
	require.NoError(t, err)

	assert.Equal(t, StatusInsufficientStock, resp.ActionResult.Status)
	require.NotNil(t, resp.ActionResult.Available)
	assert.Equal(t, 3, *resp.ActionResult.Available)
	assert.Equal(t, 5, resp.ActionResult.Requested)
	assert.Equal(t, "Only 3 Mouse available", resp.ActionResult.Message)
	// Stock untouched.
	assert.Equal(t, 3, f.products.products[0].StockQuantity)
}

func TestInsufficientStockSerializesZeroAvailable(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 0, ReorderThreshold: 5})

	resp, err := f.router.Process(context.Background(), "s1", "order 5 mouse for Rahul")
	require.NoError(t, err)
	assert.Equal(t, StatusInsufficientStock, resp.ActionResult.Status)

	raw, err := json.Marshal(resp.ActionResult)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"available":0`)
}

func TestProcessCreateOrderProductNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(
		models.Product{ID: 1, Name: "Laptop", Price: 50000, StockQuantity: 10},
		models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50},
	)

	resp, err := f.router.Process(context.Background(), "s1", "order 2 zzyzx for Rahul")
	require.NoError(t, err)

	assert.Equal(t, StatusProductNotFound, resp.ActionResult.Status)
	assert.Equal(t, []string{"Laptop", "Mouse"}, resp.ActionResult.AvailableProducts)
}

func TestProcessMissingProductThenResume(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50, ReorderThreshold: 5})
	ctx := context.Background()

	// The fallback extractor keeps only "al", too short to be a product, so
	// the order parks waiting for one.
	resp, err := f.router.Process(ctx, "s1", "Order for Al")
	require.NoError(t, err)
	assert.Equal(t, StatusMissingInfo, resp.ActionResult.Status)
	assert.Equal(t, []string{"product_name"}, resp.ActionResult.Missing)

	// The next message from the same session is taken as the answer.
	resp, err = f.router.Process(ctx, "s1", "Mouse")
	require.NoError(t, err)
	assert.Equal(t, "create_order", resp.Intent)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, "Mouse", resp.ActionResult.Product)
	assert.Equal(t, 1, resp.ActionResult.Quantity)
	assert.Equal(t, "Al", resp.ActionResult.Customer)

	// Context is consumed; the same answer again is a fresh message.
	resp, err = f.router.Process(ctx, "s1", "Mouse")
	require.NoError(t, err)
	assert.NotEqual(t, "create_order", resp.Intent)
}

func TestProcessResumeIsPerSession(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50})
	ctx := context.Background()

	_, err := f.router.Process(ctx, "s1", "Order for Al")
	require.NoError(t, err)

	// A different session is unaffected by s1's pending question.
	resp, err := f.router.Process(ctx, "s2", "Mouse")
	require.NoError(t, err)
	assert.NotEqual(t, StatusSuccess, resp.ActionResult.Status)
}

func TestProcessCheckInventory(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(
		models.Product{ID: 1, Name: "Laptop", Price: 50000, StockQuantity: 10, ReorderThreshold: 2},
		models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50, ReorderThreshold: 5},
	)

	resp, err := f.router.Process(context.Background(), "s1", "Check stock of mouse")
	require.NoError(t, err)

	assert.Equal(t, "check_inventory", resp.Intent)
	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, "Mouse", resp.ActionResult.Product)
	assert.Equal(t, 50, resp.ActionResult.Stock)
	assert.Contains(t, f.audit.types(), "AI_INVENTORY_CHECKED")

	// A healthy stock level still reports its reorder status explicitly.
	require.NotNil(t, resp.ActionResult.NeedsReorder)
	assert.False(t, *resp.ActionResult.NeedsReorder)
	raw, err := json.Marshal(resp.ActionResult)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"needs_reorder":false`)
}

func TestProcessCheckInventoryLowStockReport(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(
		models.Product{ID: 1, Name: "Laptop", Price: 50000, StockQuantity: 1, ReorderThreshold: 2},
		models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50, ReorderThreshold: 5},
	)

	// No product survives extraction, so the whole low-stock report comes
	// back instead.
	resp, err := f.router.Process(context.Background(), "s1", "stock")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	require.Len(t, resp.ActionResult.LowStockProducts, 1)
	assert.Equal(t, LowStockItem{Name: "Laptop", Stock: 1, Threshold: 2}, resp.ActionResult.LowStockProducts[0])
}

func TestProcessListProducts(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(
		models.Product{ID: 1, Name: "Laptop", Price: 50000, StockQuantity: 1, ReorderThreshold: 2},
		models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50, ReorderThreshold: 5},
	)

	resp, err := f.router.Process(context.Background(), "s1", "sab products dikhao")
	require.NoError(t, err)

	assert.Equal(t, "list_products", resp.Intent)
	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, 2, resp.ActionResult.TotalCount)
	assert.Equal(t, ProductSummary{Name: "Laptop", Stock: 1, Price: 50000, NeedsReorder: true}, resp.ActionResult.Products[0])
}

func TestProcessListProductsEmpty(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Process(context.Background(), "s1", "sab products dikhao")
	require.NoError(t, err)

	assert.Equal(t, StatusError, resp.ActionResult.Status)
	assert.Equal(t, "No products found in inventory", resp.ActionResult.Message)
}

func TestProcessAddProductCreatesNew(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Process(context.Background(), "s1", "Add product Pen price 5 stock 25")
	require.NoError(t, err)

	assert.Equal(t, "add_product", resp.Intent)
	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, "Pen", resp.ActionResult.ProductName)
	assert.InDelta(t, 5.0, resp.ActionResult.Price, 1e-9)
	assert.Equal(t, 25, resp.ActionResult.Stock)
	assert.Equal(t, 10, resp.ActionResult.ReorderThreshold)
	assert.Contains(t, f.audit.types(), "AI_PRODUCT_ADDED")
}

func TestProcessAddProductRestocksExisting(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(models.Product{ID: 3, Name: "Pen", Price: 4, StockQuantity: 10, ReorderThreshold: 10})

	resp, err := f.router.Process(context.Background(), "s1", "Add product Pen price 5 stock 25")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, "Updated stock for 'Pen'!", resp.ActionResult.Message)
	assert.Equal(t, 35, resp.ActionResult.Stock)
	assert.InDelta(t, 5.0, resp.ActionResult.Price, 1e-9)
	assert.Contains(t, f.audit.types(), "AI_PRODUCT_UPDATED")
	assert.NotContains(t, f.audit.types(), "AI_PRODUCT_ADDED")
}

func TestProcessAddProductMissingPieces(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Process(context.Background(), "s1", "add product Pen stock kitna rakhe price batao")
	require.NoError(t, err)
	assert.Equal(t, StatusMissingInfo, resp.ActionResult.Status)
	assert.Equal(t, []string{"price"}, resp.ActionResult.Missing)
	assert.NotEmpty(t, resp.ActionResult.Example)
}

func TestProcessGenerateInvoice(t *testing.T) {
	f := newFixture(t)
	f.orders.orders = map[int]models.Order{12: {ID: 12, CustomerID: 1, OrderTotal: 999}}

	resp, err := f.router.Process(context.Background(), "s1", "bill banao order 12 ka")
	require.NoError(t, err)

	assert.Equal(t, "generate_invoice", resp.Intent)
	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, 12, resp.ActionResult.OrderID)
	assert.Equal(t, 112, resp.ActionResult.InvoiceID)
	assert.Equal(t, "invoices/invoice_12.pdf", resp.ActionResult.FilePath)
	assert.Equal(t, "/api/v1/invoices/112/download", resp.ActionResult.DownloadURL)
	assert.Contains(t, f.audit.types(), "AI_INVOICE_GENERATED")
}

func TestProcessGenerateInvoiceOrderNotFound(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Process(context.Background(), "s1", "bill banao order 99 ka")
	require.NoError(t, err)

	assert.Equal(t, StatusOrderNotFound, resp.ActionResult.Status)
	assert.Equal(t, "Order #99 not found", resp.ActionResult.Message)
}

func TestProcessAddCustomer(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Process(context.Background(), "s1", "new customer priya 9876543210")
	require.NoError(t, err)

	assert.Equal(t, "add_customer", resp.Intent)
	assert.Equal(t, StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, "Priya", resp.ActionResult.CustomerName)
	assert.Equal(t, "+919876543210", resp.ActionResult.Phone)
	assert.Contains(t, f.audit.types(), "AI_CUSTOMER_ADDED")
}

func TestProcessAddCustomerAlreadyExists(t *testing.T) {
	f := newFixture(t)
	f.customers.customers = []models.Customer{{ID: 4, Name: "Priya Singh", Phone: "+919876543210"}}

	resp, err := f.router.Process(context.Background(), "s1", "new customer priya 9876543210")
	require.NoError(t, err)

	assert.Equal(t, StatusAlreadyExists, resp.ActionResult.Status)
	assert.Equal(t, 4, resp.ActionResult.CustomerID)
	assert.Equal(t, "Priya Singh", resp.ActionResult.CustomerName)
}

func TestProcessPaymentReminderSuggestion(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Process(context.Background(), "s1", "payment reminder for Amit")
	require.NoError(t, err)

	assert.Equal(t, "payment_reminder_suggestion", resp.Intent)
	assert.Equal(t, StatusSuggestion, resp.ActionResult.Status)
	assert.Contains(t, resp.ActionResult.SuggestedMessage, "Dear Amit")
	assert.Equal(t, []string{"SMS", "WhatsApp", "Email"}, resp.ActionResult.Channels)
	assert.Contains(t, f.audit.types(), "AI_PAYMENT_REMINDER_SUGGESTED")
}

func TestProcessUnknownIntent(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Process(context.Background(), "s1", "hello there")
	require.NoError(t, err)

	assert.Equal(t, "unknown", resp.Intent)
	assert.Equal(t, 0.0, resp.Confidence)
	assert.Equal(t, StatusUnknownIntent, resp.ActionResult.Status)
	assert.Len(t, resp.ActionResult.Suggestions, 5)
	assert.Contains(t, f.audit.types(), "AI_INTENT_DETECTED_UNKNOWN")
}

func TestProcessExecutionErrorIsContained(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50})
	f.orders.createErr = errors.New("orders table unavailable")

	resp, err := f.router.Process(context.Background(), "s1", "order 1 mouse for Rahul")
	require.NoError(t, err)

	assert.Equal(t, StatusError, resp.ActionResult.Status)
	assert.Equal(t, "orders table unavailable", resp.ActionResult.Message)
	assert.Contains(t, f.audit.types(), "AI_ACTION_ERROR")
}

func TestProcessCustomerCreateFailure(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(models.Product{ID: 2, Name: "Mouse", Price: 500, StockQuantity: 50})
	f.customers.createErr = errors.New("duplicate phone")

	resp, err := f.router.Process(context.Background(), "s1", "order 1 mouse for Rahul")
	require.NoError(t, err)

	assert.Equal(t, StatusError, resp.ActionResult.Status)
	assert.Equal(t, "Could not create customer: duplicate phone", resp.ActionResult.Message)
}

func TestClassifyMemoizesByNormalizedText(t *testing.T) {
	f := newFixture(t)

	first := f.router.Classify("Order 2 laptops for Rahul")
	second := f.router.Classify("  order 2 laptops for rahul ")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.router.cache.Len())
}
