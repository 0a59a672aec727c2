package detectintent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bazaar-workers/internal/agent/router"
	"bazaar-workers/internal/common/camunda"
	"bazaar-workers/internal/common/config"
	"bazaar-workers/internal/common/errors"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/common/metrics"
	"bazaar-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "assistant.intent.detect"

// Handler classifies a message and extracts its entities without executing
// anything. Classification shares the router's memo cache, so repeated
// phrasings across a busy shop day stay cheap.
type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	router       *router.Router
	task         *registry.Task
	errorHandler *errors.ErrorHandler
	jobWorker    worker.JobWorker
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	Router       *router.Router
	Registry     *registry.TaskRegistry
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for detect-intent: %w", err)
	}
	if opts.Router == nil {
		return nil, fmt.Errorf("detect-intent requires a command router")
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}

	handler := &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		camunda:      opts.Camunda,
		router:       opts.Router,
		errorHandler: errors.NewErrorHandler(loggerInstance),
	}

	if opts.Registry != nil {
		handler.task = opts.Registry.FindByTaskType(TaskType)
	}

	return handler, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output := h.Execute(input)

	h.completeJob(ctx, client, job, output)
	metrics.ProcessingDuration.WithLabelValues(output.Intent).Observe(time.Since(startTime).Seconds())
}

// Execute classifies directly, outside any job plumbing.
func (h *Handler) Execute(input *Input) *Output {
	it := h.router.Classify(input.Message)
	return &Output{
		Intent:     it.Name,
		Confidence: it.Confidence,
		Entities:   it.Entities,
	}
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidTaskInputError(fmt.Sprintf("failed to parse job variables: %s", err.Error()))
	}

	if h.task != nil {
		if err := h.task.ValidateInput(variables); err != nil {
			return nil, errors.NewInvalidTaskInputError(err.Error())
		}
	}

	message, _ := variables["message"].(string)
	if strings.TrimSpace(message) == "" {
		return nil, errors.NewInvalidTaskInputError("message is required")
	}

	return &Input{Message: message}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(output.ToVariables())
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return
	}

	if _, err = request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return
	}

	h.logger.Info("Intent detected", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"intent":     output.Intent,
		"confidence": output.Confidence,
		"worker":     TaskType,
	})
}

func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", map[string]interface{}{
			"worker": TaskType,
		})
		return nil
	}

	h.jobWorker = h.camunda.Raw().NewJobWorker().
		JobType(TaskType).
		Handler(h.Handle).
		MaxJobsActive(h.config.MaxJobsActive).
		Timeout(h.config.Timeout).
		Name(fmt.Sprintf("%s-worker", TaskType)).
		Open()

	h.logger.Info("Intent detection worker registered", map[string]interface{}{
		"taskType":      TaskType,
		"maxJobsActive": h.config.MaxJobsActive,
		"timeout":       h.config.Timeout.String(),
	})

	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.logger.Info("Shutting down worker gracefully", map[string]interface{}{
			"worker": TaskType,
		})
		h.jobWorker.Close()
		h.jobWorker = nil
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		workerCfg := appConfig.Workers.DetectIntent
		cfg.Enabled = workerCfg.Enabled
		if workerCfg.MaxJobsActive > 0 {
			cfg.MaxJobsActive = workerCfg.MaxJobsActive
		}
		if workerCfg.Timeout > 0 {
			cfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
		}
		if workerCfg.MaxRetries > 0 {
			cfg.MaxRetries = workerCfg.MaxRetries
		}
	}

	return cfg
}
