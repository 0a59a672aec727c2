// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bazaar-workers/internal/agent/router"
	"bazaar-workers/internal/agent/session"
	commonaws "bazaar-workers/internal/common/aws"
	"bazaar-workers/internal/common/camunda"
	"bazaar-workers/internal/common/config"
	"bazaar-workers/internal/common/database"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/common/observability"
	"bazaar-workers/internal/services/audit"
	"bazaar-workers/internal/services/customers"
	"bazaar-workers/internal/services/invoices"
	"bazaar-workers/internal/services/notify"
	"bazaar-workers/internal/services/orders"
	"bazaar-workers/internal/services/products"
	"bazaar-workers/pkg/registry"

	di "bazaar-workers/internal/workers/assistant/detect-intent"
	pm "bazaar-workers/internal/workers/assistant/process-message"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional audit index) ---
	var auditIndexer audit.Indexer
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		auditIndexer = esClient
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("Elasticsearch disabled, audit log stays in PostgreSQL only")
	}

	// --- Init notification channels ---
	var sms notify.SMSPublisher
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client initialization failed", zap.Error(err))
		}
		sms = snsClient
	}

	var email notify.EmailSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client initialization failed", zap.Error(err))
		}
		email = sesClient
	}

	// --- Domain services ---
	auditService := audit.New(pg.DB, auditIndexer, cfg.Database.Elasticsearch.Index, log)
	customerService := customers.New(pg.DB, log)
	productService := products.New(pg.DB, log)
	orderService := orders.New(pg.DB, auditService, log)
	invoiceService := invoices.New(pg.DB, invoices.NoOpRenderer{}, "invoices", log)
	notifyService := notify.New(cfg.Notifications, sms, email, rdb.Client, log)

	sessionStore := session.NewRedisStore(rdb.Client, time.Duration(cfg.Agent.ContextTTLSeconds)*time.Second)

	commandRouter := router.New(router.Options{
		Sessions:      sessionStore,
		Customers:     customerService,
		Products:      productService,
		Orders:        orderService,
		Invoices:      invoiceService,
		Audit:         auditService,
		Logger:        log,
		DownloadBase:  cfg.Agent.InvoiceDownloadBase,
		CacheSize:     cfg.Agent.IntentCacheSize,
		GuestLanguage: cfg.Agent.GuestLanguage,
	})

	// --- Task registry (input/output schemas for job validation) ---
	taskRegistry, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("task registry unavailable, schema validation disabled",
			zap.String("path", cfg.Registry.Path), zap.Error(err))
		taskRegistry = nil
	}

	// --- Register workers ---
	processMessageHandler, err := pm.NewHandler(pm.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		Router:    commandRouter,
		Registry:  taskRegistry,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create process-message handler", zap.Error(err))
	}
	if err := processMessageHandler.Register(); err != nil {
		zapLog.Fatal("failed to register process-message worker", zap.Error(err))
	}
	defer processMessageHandler.Close()

	detectIntentHandler, err := di.NewHandler(di.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		Router:    commandRouter,
		Registry:  taskRegistry,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create detect-intent handler", zap.Error(err))
	}
	if err := detectIntentHandler.Register(); err != nil {
		zapLog.Fatal("failed to register detect-intent worker", zap.Error(err))
	}
	defer detectIntentHandler.Close()

	zapLog.Info("All workers registered successfully")

	// --- Low-stock sweep ---
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runLowStockSweep(sweepCtx, cfg, productService, notifyService, zapLog)

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	stopSweep()

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// runLowStockSweep periodically checks the catalog and alerts the vendor
// about products at or below their reorder threshold.
func runLowStockSweep(ctx context.Context, cfg *config.Config, catalog *products.Service, notifier *notify.Service, log *zap.Logger) {
	interval := time.Duration(cfg.Notifications.LowStockSweepSeconds) * time.Second
	if interval <= 0 {
		log.Info("Low-stock sweep disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("Low-stock sweep started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lowStock, err := catalog.ListLowStock(ctx)
			if err != nil {
				log.Error("Low-stock sweep query failed", zap.Error(err))
				continue
			}
			for _, product := range lowStock {
				sent, err := notifier.LowStockAlert(ctx, product)
				if err != nil {
					log.Error("Low-stock alert failed",
						zap.String("product", product.Name), zap.Error(err))
					continue
				}
				if sent {
					log.Info("Low-stock alert sent",
						zap.String("product", product.Name),
						zap.Int("stock", product.StockQuantity))
				}
			}
		}
	}
}
