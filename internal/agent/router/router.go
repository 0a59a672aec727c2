// internal/agent/router/router.go

// Package router turns natural-language messages into backend actions. It
// classifies the message, extracts entities, resumes half-complete commands
// from session context, dispatches to the domain services and records every
// decision in the audit trail.
package router

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"bazaar-workers/internal/agent/extract"
	"bazaar-workers/internal/agent/intent"
	"bazaar-workers/internal/agent/session"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/common/metrics"
	"bazaar-workers/internal/models"
)

// Audit action types written for every assistant decision.
const (
	auditIntentDetectedPrefix  = "AI_INTENT_DETECTED_"
	auditAutoCreatedCustomer   = "AI_AUTO_CREATED_CUSTOMER"
	auditOrderCreated          = "AI_ORDER_CREATED"
	auditInventoryChecked      = "AI_INVENTORY_CHECKED"
	auditInvoiceGenerated      = "AI_INVOICE_GENERATED"
	auditCustomerAdded         = "AI_CUSTOMER_ADDED"
	auditProductAdded          = "AI_PRODUCT_ADDED"
	auditProductUpdated        = "AI_PRODUCT_UPDATED"
	auditPaymentReminder       = "AI_PAYMENT_REMINDER_SUGGESTED"
	auditActionError           = "AI_ACTION_ERROR"
)

// customerMatchCutoff is deliberately stricter than the product cutoff: a
// near-miss on a person's name must not charge the wrong account.
const customerMatchCutoff = 0.8

const defaultReorderThreshold = 10

// CustomerDirectory is the customer lookup and registration surface the
// router needs. GetByPhone returns (nil, nil) when no customer has that
// phone.
type CustomerDirectory interface {
	GetByPhone(ctx context.Context, phone string) (*models.Customer, error)
	ListAll(ctx context.Context) ([]models.Customer, error)
	Create(ctx context.Context, name, phone, languagePreference string) (*models.Customer, error)
}

// ProductCatalog is the product surface the router needs. Restock adds
// quantity to an existing product and updates its price; a non-nil
// reorderThreshold also replaces the threshold.
type ProductCatalog interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, name string, price float64, stockQuantity, reorderThreshold int) (*models.Product, error)
	Restock(ctx context.Context, id, quantity int, price float64, reorderThreshold *int) (*models.Product, error)
}

// OrderLedger creates orders and resolves order references. Get returns
// (nil, nil) when the order does not exist.
type OrderLedger interface {
	Get(ctx context.Context, id int) (*models.Order, error)
	Create(ctx context.Context, customerID int, items []models.OrderItemInput) (*models.Order, error)
}

// InvoiceGenerator produces (or returns the existing) invoice for an order.
type InvoiceGenerator interface {
	Generate(ctx context.Context, orderID int) (*models.Invoice, error)
}

// AuditSink records assistant actions. Failures are the sink's problem;
// the router only logs them.
type AuditSink interface {
	Record(ctx context.Context, actionType, inputText, outputAction string) error
}

// Router wires classification, extraction, session context and the domain
// services together.
type Router struct {
	classifier *intent.Classifier
	cache      *intent.Cache
	sessions   session.Store

	customers CustomerDirectory
	products  ProductCatalog
	orders    OrderLedger
	invoices  InvoiceGenerator
	auditSink AuditSink

	log           logger.Logger
	downloadBase  string
	guestLanguage string

	now     func() time.Time
	randInt func(n int) int
}

// Options carries the router's collaborators.
type Options struct {
	Sessions  session.Store
	Customers CustomerDirectory
	Products  ProductCatalog
	Orders    OrderLedger
	Invoices  InvoiceGenerator
	Audit     AuditSink
	Logger    logger.Logger

	// DownloadBase prefixes invoice download URLs, e.g. "/api/v1/invoices".
	DownloadBase string
	CacheSize    int

	// GuestLanguage is the language preference assigned to customers the
	// assistant registers itself. Defaults to "en".
	GuestLanguage string
}

func New(opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	base := opts.DownloadBase
	if base == "" {
		base = "/api/v1/invoices"
	}
	lang := opts.GuestLanguage
	if lang == "" {
		lang = "en"
	}
	return &Router{
		classifier:    intent.NewClassifier(),
		cache:         intent.NewCache(opts.CacheSize),
		sessions:      opts.Sessions,
		customers:     opts.Customers,
		products:      opts.Products,
		orders:        opts.Orders,
		invoices:      opts.Invoices,
		auditSink:     opts.Audit,
		log:           log,
		downloadBase:  base,
		guestLanguage: lang,
		now:           time.Now,
		randInt:       rand.Intn,
	}
}

// Classify scores and extracts one message without executing anything.
// Results are memoized on the normalized text.
func (r *Router) Classify(message string) intent.Intent {
	norm := intent.Normalize(message)
	if cached, ok := r.cache.Get(norm); ok {
		metrics.IntentCacheHits.Inc()
		return cached
	}

	name, confidence := r.classifier.Classify(norm)
	it := intent.Intent{
		Name:       name,
		Confidence: confidence,
		Entities:   extract.Extract(norm),
	}
	r.cache.Put(norm, it)
	metrics.IntentsDetected.WithLabelValues(name).Inc()
	return it
}

// Process handles one message for a session: resume a pending command if
// one is waiting for exactly this kind of answer, otherwise classify fresh,
// then execute.
func (r *Router) Process(ctx context.Context, sessionID, message string) (*Response, error) {
	pending, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		// A broken context store must not take message handling down.
		r.log.WithError(err).Warn("pending context unavailable, treating message as fresh", nil)
		pending = nil
	}

	if pending != nil && pending.MissingField == extract.KeyProductName {
		entities := cloneEntities(pending.Entities)
		entities[extract.KeyProductName] = strings.TrimSpace(message)

		it := intent.Intent{
			Name:       pending.Intent,
			Confidence: 1.0,
			Entities:   entities,
		}
		return r.execute(ctx, sessionID, it, message), nil
	}

	it := r.Classify(message)
	r.audit(ctx, auditIntentDetectedPrefix+strings.ToUpper(it.Name), message,
		fmt.Sprintf("Intent: %s, Confidence: %.2f", it.Name, it.Confidence))

	return r.execute(ctx, sessionID, it, message), nil
}

func (r *Router) execute(ctx context.Context, sessionID string, it intent.Intent, message string) *Response {
	// Any new command invalidates whatever was pending; a fresh
	// missing_info below re-arms it.
	if err := r.sessions.Clear(ctx, sessionID); err != nil {
		r.log.WithError(err).Warn("failed to clear pending context", nil)
	}

	result := r.dispatch(ctx, it, message)

	if result.Status == StatusMissingInfo && len(result.Missing) > 0 {
		pc := session.PendingContext{
			Intent:       it.Name,
			Entities:     it.Entities,
			MissingField: result.Missing[0],
		}
		if err := r.sessions.Put(ctx, sessionID, pc); err != nil {
			r.log.WithError(err).Warn("failed to store pending context", nil)
		}
	}

	metrics.MessagesProcessed.WithLabelValues(it.Name, result.Status).Inc()

	return &Response{
		Intent:          it.Name,
		Confidence:      it.Confidence,
		Entities:        it.Entities,
		ActionResult:    result,
		OriginalMessage: message,
	}
}

func (r *Router) dispatch(ctx context.Context, it intent.Intent, message string) ActionResult {
	var (
		result ActionResult
		err    error
	)

	switch it.Name {
	case intent.CreateOrder:
		result, err = r.handleCreateOrder(ctx, it, message)
	case intent.CheckInventory:
		result, err = r.handleCheckInventory(ctx, it, message)
	case intent.ListProducts:
		result, err = r.handleListProducts(ctx)
	case intent.AddProduct:
		result, err = r.handleAddProduct(ctx, it, message)
	case intent.GenerateInvoice:
		result, err = r.handleGenerateInvoice(ctx, it, message)
	case intent.AddCustomer:
		result, err = r.handleAddCustomer(ctx, it, message)
	case intent.PaymentReminderSuggested:
		result, err = r.handlePaymentReminder(ctx, it, message)
	default:
		result = ActionResult{
			Status:  StatusUnknownIntent,
			Message: "I didn't understand that. Can you rephrase?",
			Suggestions: []string{
				"Create an order",
				"Check inventory",
				"Generate invoice",
				"Add customer",
				"Payment reminder",
			},
		}
	}

	if err != nil {
		r.log.WithError(err).Error("intent execution failed", nil)
		r.audit(ctx, auditActionError, message, fmt.Sprintf("Error: %s", err.Error()))
		return ActionResult{Status: StatusError, Message: err.Error()}
	}
	return result
}

func (r *Router) audit(ctx context.Context, actionType, inputText, outputAction string) {
	if err := r.auditSink.Record(ctx, actionType, inputText, outputAction); err != nil {
		r.log.WithError(err).Warn("audit record failed", map[string]interface{}{"action_type": actionType})
	}
}

func cloneEntities(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
