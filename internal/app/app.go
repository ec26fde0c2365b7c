// Package app wires the configured services together for the binaries.
package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"ukm-ponja/internal/auth"
	"ukm-ponja/internal/config"
	"ukm-ponja/internal/docstore"
	"ukm-ponja/internal/export"
	"ukm-ponja/internal/gallery"
	"ukm-ponja/internal/imagegen"
	"ukm-ponja/internal/insight"
	"ukm-ponja/internal/llm"
	"ukm-ponja/internal/metrics"
	"ukm-ponja/internal/revalidate"
	"ukm-ponja/internal/settings"
	"ukm-ponja/internal/storage"
	"ukm-ponja/internal/upload"
)

// App holds the shared services. Pipeline, Insight and Tokens are nil when
// their credentials are missing.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Settings *settings.Service
	Gallery  gallery.Store
	Cache    *revalidate.Cache
	Recorder storage.Recorder
	Pipeline *export.Pipeline
	Insight  *insight.Service
	Admins   *auth.Service
	Tokens   *auth.TokenIssuer
}

// New builds the services. Optional collaborators that cannot be configured
// are logged and left nil; only storage errors are fatal. docOpts are passed
// to the Firestore client after the credentials option.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, docOpts ...option.ClientOption) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log, Metrics: metrics.New(), Cache: revalidate.NewCache()}

	settingsStore, galleryStore, err := stores(ctx, cfg, log, docOpts)
	if err != nil {
		return nil, err
	}
	a.Gallery = galleryStore

	inv := revalidate.Multi{a.Cache}
	if cfg.RevalidateURL != "" {
		inv = append(inv, revalidate.NewWebhook(cfg.RevalidateURL, cfg.RevalidateSecret))
	}
	a.Settings = settings.NewService(settingsStore, inv, cfg.RevalidatePaths, log.Named("settings"), a.Metrics)

	rec, err := storage.NewFileRecorder(cfg.ExportLogPath)
	if err != nil {
		return nil, fmt.Errorf("init export log: %w", err)
	}
	a.Recorder = rec

	gen, err := imagegen.New(ctx, cfg)
	if err != nil {
		log.Warn("image generation disabled", zap.Error(err))
	} else {
		up, err := upload.New(cfg)
		if err != nil {
			log.Warn("image upload disabled, exports stay transient", zap.Error(err))
		}
		a.Pipeline = export.NewPipeline(gen, up, a.Gallery,
			export.WithCategory(cfg.GalleryLabel),
			export.WithRecorder(rec),
			export.WithLogger(log.Named("export")),
			export.WithMetrics(a.Metrics))
	}

	if client, err := llm.NewClient(cfg); err != nil {
		log.Warn("chart insight disabled", zap.Error(err))
	} else {
		a.Insight = insight.NewService(client, log.Named("insight"))
	}

	if err := a.initAuth(cfg, log); err != nil {
		return nil, err
	}
	return a, nil
}

func stores(ctx context.Context, cfg *config.Config, log *zap.Logger, docOpts []option.ClientOption) (settings.Store, gallery.Store, error) {
	if !cfg.UsesFirestore() {
		log.Info("using local file storage", zap.String("settings", cfg.SettingsFilePath), zap.String("gallery", cfg.GalleryFilePath))
		ss, err := settings.NewFileStore(cfg.SettingsFilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init settings file: %w", err)
		}
		gs, err := gallery.NewFileStore(cfg.GalleryFilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init gallery file: %w", err)
		}
		return ss, gs, nil
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.GoogleCredentialsJSON) != "" {
		credOpt, err := docstore.CredentialsOption(ctx, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, credOpt)
	}
	opts = append(opts, docOpts...)
	client, err := docstore.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabase, opts...)
	if err != nil {
		// Reads fall back to the default dataset, writes report the missing store.
		log.Error("firestore unavailable, chart settings are read-only defaults", zap.Error(err))
		return settings.Unavailable{}, nil, nil
	}
	log.Info("using firestore", zap.String("project", cfg.FirestoreProjectID))
	return settings.NewFirestoreStore(client, cfg.SettingsDocument), gallery.NewFirestoreStore(client, cfg.GalleryCollection), nil
}

func (a *App) initAuth(cfg *config.Config, log *zap.Logger) error {
	var repo auth.Repository
	if cfg.AllowlistFilePath != "" {
		r, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			log.Warn("failed to init allowlist repo", zap.Error(err))
		} else {
			repo = r
		}
	}
	initial := append([]string{}, cfg.AdminEmails...)
	for _, id := range cfg.TelegramAdminIDs {
		initial = append(initial, auth.TelegramID(id))
	}
	admins, err := auth.NewWithRepo(repo, initial)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}
	a.Admins = admins
	if cfg.AdminJWTSecret == "" {
		log.Warn("ADMIN_JWT_SECRET is empty, admin API disabled")
		return nil
	}
	a.Tokens = auth.NewTokenIssuer(cfg.AdminJWTSecret, auth.DefaultTokenTTL)
	return nil
}

// SnapshotExport exports the current chart on behalf of the scheduler.
func (a *App) SnapshotExport(ctx context.Context) (export.Result, error) {
	if a.Pipeline == nil {
		return export.Result{}, fmt.Errorf("image export is not configured")
	}
	ctx, cancel := export.WithTimeout(ctx, a.Config.ExportTimeout)
	defer cancel()
	cfg, _ := a.Settings.Current(ctx)
	return a.Pipeline.Export(ctx, export.Request{Config: cfg, Trigger: "schedule"})
}
