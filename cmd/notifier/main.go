// cmd/notifier/main.go
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

	"sms-notifier/internal/brand"
	"sms-notifier/internal/common/config"
	"sms-notifier/internal/common/logger"
	"sms-notifier/internal/common/observability"
	"sms-notifier/internal/common/validation"
	"sms-notifier/internal/consumer"
	"sms-notifier/internal/dedupe"
	"sms-notifier/internal/gateway"
	"sms-notifier/internal/orchestrator"
	"sms-notifier/internal/resilience"
	"sms-notifier/internal/smsforge"
	"sms-notifier/internal/xmlforge"
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
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting sms-notifier...",
		zap.String("environment", cfg.App.Environment),
		zap.String("gateway", cfg.Gateway.Provider),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- SMS gateway ---
	var gw gateway.Gateway
	switch cfg.Gateway.Provider {
	case "sns":
		err = retryWithBackoff(func() error {
			var err error
			gw, err = gateway.NewSNSGateway(ctx, cfg.Gateway.AWS.Region)
			return err
		}, 5, 2*time.Second, zapLog, "SNS client initialization")
		if err != nil {
			zapLog.Fatal("sns gateway failed after retries", zap.Error(err))
		}
	default:
		gw = gateway.NewInfobipClient(
			cfg.Gateway.Infobip.BaseURL,
			cfg.Gateway.Infobip.APIKey,
			config.GetDuration(cfg.Gateway.Timeout),
			log,
		)
	}
	zapLog.Info("SMS gateway initialized", zap.String("provider", cfg.Gateway.Provider))

	// --- Dedupe store (optional) ---
	var deduper orchestrator.Deduper
	if cfg.Dedupe.Enabled {
		var store *dedupe.Store
		err = retryWithBackoff(func() error {
			var err error
			store, err = dedupe.New(ctx, dedupe.Config{
				Addr:     cfg.Dedupe.Redis.Address,
				Password: cfg.Dedupe.Redis.Password,
				DB:       cfg.Dedupe.Redis.DB,
				TTL:      time.Duration(cfg.Dedupe.TTLHours) * time.Hour,
			}, log)
			return err
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer store.Close()
		deduper = store
		zapLog.Info("Redis connected successfully")
	}

	validator, err := validation.NewValidator()
	if err != nil {
		zapLog.Fatal("order event schema failed to compile", zap.Error(err))
	}

	brands := brand.NewRegistry(brandsFromConfig(cfg.Brands), cfg.Brands.DefaultCode)
	if dc := cfg.Brands.DefaultCode; dc != "" && !brands.Known(dc) {
		zapLog.Fatal("default brand code has no configured brand", zap.String("code", dc))
	}

	dispatcher := resilience.NewDispatcher("sms_delivery", resilience.DispatcherConfig{
		Retry: resilience.RetryPolicy{
			MaxAttempts:  cfg.Dispatch.MaxAttempts,
			InitialDelay: config.GetDuration(cfg.Dispatch.InitialDelay),
			Factor:       cfg.Dispatch.BackoffFactor,
		},
		Breaker: resilience.BreakerConfig{
			FailureRatio: cfg.Dispatch.FailureRatio,
			MinRequests:  cfg.Dispatch.MinRequests,
			Window:       time.Duration(cfg.Dispatch.WindowSeconds) * time.Second,
			OpenTimeout:  time.Duration(cfg.Dispatch.OpenTimeoutSecs) * time.Second,
		},
		AttemptTimeout: config.GetDuration(cfg.Dispatch.AttemptTimeout),
	}, log)

	orch := orchestrator.New(orchestrator.Options{
		Extractor:     xmlforge.NewExtractor(),
		Templates:     smsforge.DefaultRegistry(),
		Brands:        brands,
		Validator:     validator,
		Deduper:       deduper,
		Dispatcher:    dispatcher,
		Gateway:       gw,
		Observability: obs,
		Logger:        log,
	})

	cons := consumer.New(cfg.Kafka, orch, log)
	defer cons.Close()

	// --- Health & Metrics Server ---
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Consume until shutdown signal ---
	if err := cons.Run(ctx); err != nil {
		zapLog.Error("consumer stopped with error", zap.Error(err))
	}

	zapLog.Info("Shutdown signal received, sms-notifier stopped gracefully")
}

// brandsFromConfig merges configured overrides onto the default banner set.
func brandsFromConfig(cfg config.BrandsConfig) []brand.Brand {
	brands := brand.DefaultBrands()
	for _, o := range cfg.Overrides {
		replaced := false
		for i := range brands {
			if brands[i].Code == o.Code {
				if o.Name != "" {
					brands[i].Name = o.Name
				}
				if o.SenderID != "" {
					brands[i].SenderID = o.SenderID
				}
				replaced = true
				break
			}
		}
		if !replaced {
			brands = append(brands, brand.Brand{Code: o.Code, Name: o.Name, SenderID: o.SenderID})
		}
	}
	return brands
}
