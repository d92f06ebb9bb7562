package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gitshopapp/orderreceipt/internal/company"
	"github.com/gitshopapp/orderreceipt/internal/config"
	"github.com/gitshopapp/orderreceipt/internal/handlers"
	"github.com/gitshopapp/orderreceipt/internal/history"
	"github.com/gitshopapp/orderreceipt/internal/logging"
	"github.com/gitshopapp/orderreceipt/internal/parser"
	"github.com/gitshopapp/orderreceipt/internal/services"
	"github.com/gitshopapp/orderreceipt/internal/storage"
	"github.com/gitshopapp/orderreceipt/internal/templates"
	"github.com/gitshopapp/orderreceipt/internal/validation"
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	Storage        storage.Provider
	ReceiptService *services.ReceiptService
	Handlers       *handlers.Handlers

	logFile io.Closer
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	provider, err := storage.NewProvider(startupCtx, storage.Config{
		Provider:              cfg.StorageProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		DatabaseURL:           cfg.DatabaseURL,
		Logger:                logger.With("component", "storage"),
	})
	if err != nil {
		closeLogFile(logFile)
		return nil, fmt.Errorf("failed to initialize storage provider: %w", err)
	}

	validator := validation.New()
	templateStore := templates.NewStore(provider)
	companyStore := company.NewStore(provider)

	if cfg.TemplatesFile != "" {
		if err := seedFromFile(startupCtx, cfg.TemplatesFile, validator, templateStore, companyStore, logger); err != nil {
			closeStorageProvider(logger, provider)
			closeLogFile(logFile)
			return nil, fmt.Errorf("failed to seed templates: %w", err)
		}
	}

	receiptService := services.NewReceiptService(
		parser.NewExtractor(),
		validator,
		history.NewStore(provider, cfg.HistoryLimit),
		templateStore,
		companyStore,
		services.ReceiptLimits{
			MaxTextBytes:   cfg.MaxTextBytes,
			VATRatePercent: cfg.VATRatePercent,
		},
		logger.With("component", "receipt_service"),
	)

	h, err := handlers.New(handlers.Dependencies{
		ReceiptService: receiptService,
		Storage:        provider,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		closeStorageProvider(logger, provider)
		closeLogFile(logFile)
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:         cfg,
		Logger:         logger,
		Storage:        provider,
		ReceiptService: receiptService,
		Handlers:       h,
		logFile:        logFile,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Storage != nil {
		closeStorageProvider(a.Logger, a.Storage)
	}
	closeLogFile(a.logFile)
}

// seedFromFile upserts the templates and company profile from a YAML file.
func seedFromFile(ctx context.Context, path string, validator *validation.Validator, templateStore *templates.Store, companyStore *company.Store, logger *slog.Logger) error {
	file, err := templates.NewParser().ParseFile(path)
	if err != nil {
		return err
	}

	for i := range file.Templates {
		template := &file.Templates[i]
		if err := validator.ValidateTemplate(template); err != nil {
			return fmt.Errorf("template %d (%s): %w", i, template.ID, err)
		}
		if err := templateStore.Save(ctx, *template); err != nil {
			return err
		}
	}

	if file.Company != nil {
		if err := validator.ValidateCompany(file.Company); err != nil {
			return fmt.Errorf("company: %w", err)
		}
		if err := companyStore.Save(ctx, file.Company); err != nil {
			return err
		}
	}

	logger.Info("seeded receipt settings", "path", path, "templates", len(file.Templates), "company", file.Company != nil)
	return nil
}

// newLogger writes to stdout and, when LOG_FILE is set, also appends JSON
// records at LOG_FILE_LEVEL to that file.
func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	opts := logging.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Console:   os.Stdout,
		FileLevel: cfg.LogFileLevel,
	}
	if cfg.LogFile == "" {
		return logging.New(opts), nil, nil
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	opts.File = file
	return logging.New(opts), file, nil
}

func closeStorageProvider(logger *slog.Logger, provider storage.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close storage provider", "error", err)
	}
}

func closeLogFile(file io.Closer) {
	if file != nil {
		_ = file.Close()
	}
}
