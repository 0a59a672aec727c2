// internal/agent/intent/catalog.go
package intent

// Intent names the assistant understands.
const (
	CreateOrder              = "create_order"
	CheckInventory           = "check_inventory"
	ListProducts             = "list_products"
	AddProduct               = "add_product"
	GenerateInvoice          = "generate_invoice"
	AddCustomer              = "add_customer"
	PaymentReminderSuggested = "payment_reminder_suggestion"
	Unknown                  = "unknown"
)

// Patterns pairs an intent name with its keyword/phrase list. Catalog order
// is significant: ties in scoring resolve to the earliest intent, and the
// entity extractor strips keywords in this order. Never replace the slice
// with a map.
type Patterns struct {
	Name     string
	Keywords []string
}

// Catalog is the fixed intent catalog, English and Hinglish keywords mixed.
var Catalog = []Patterns{
	{CreateOrder, []string{
		"order", "place order", "book", "buy", "purchase", "chahiye",
		"lena hai", "order karo", "order dedo", "dedo", "bhejo",
		"send", "deliver", "ship", "dispatch", "bhej do",
	}},
	{CheckInventory, []string{
		"stock", "inventory", "available", "kitna hai", "check stock",
		"stock check", "available hai", "kitne hai", "bacha hai",
	}},
	{ListProducts, []string{
		"list", "products", "all products", "show products", "product list",
		"sab products", "kitna baki", "baki hai", "list of products",
		"product kitna", "sabhi products", "dikhao products",
	}},
	{AddProduct, []string{
		"add product", "new product", "create product", "product add",
		"naaya product", "product banao", "add karo product", "product dalo",
		"insert product", "register product",
	}},
	{GenerateInvoice, []string{
		"invoice", "bill", "receipt", "bill banao", "invoice chahiye",
		"bill dedo", "receipt chahiye", "bill generate",
	}},
	{AddCustomer, []string{
		"add customer", "new customer", "register", "customer add",
		"naaya customer", "customer banao", "register karo",
	}},
	{PaymentReminderSuggested, []string{
		"payment", "reminder", "due", "pending", "payment reminder",
		"yaad dilao", "payment pending", "baaki hai", "baki payment",
	}},
}

// Keyword groups for the add_product override rule: a creation verb plus a
// pricing/stock word, without any customer/order/billing word, strongly
// suggests the user is registering inventory rather than ordering it.
var (
	createWords  = []string{"add", "new", "create", "naaya", "nava", "banao", "dalo"}
	pricingWords = []string{"price", "stock", "cost", "rate", "daam", "bharti"}
	excludeWords = []string{"customer", "order", "bill", "invoice"}
)

// NumberWord maps a Hindi/English number word to its value. Slice order is
// the lookup order: the first word contained in the text wins.
type NumberWord struct {
	Word  string
	Value int
}

var NumberWords = []NumberWord{
	{"ek", 1}, {"do", 2}, {"teen", 3}, {"char", 4}, {"paanch", 5},
	{"chhe", 6}, {"saat", 7}, {"aath", 8}, {"nau", 9}, {"das", 10},
	{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
	{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
}
