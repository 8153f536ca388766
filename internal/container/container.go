package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"laonlink/storefront/internal/catalog"
	"laonlink/storefront/internal/config"
	"laonlink/storefront/internal/images"
	"laonlink/storefront/internal/repository"
	"laonlink/storefront/internal/server"
	"laonlink/storefront/internal/service"
	"laonlink/storefront/internal/site"
	"laonlink/storefront/internal/source"
	"laonlink/storefront/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Store      *catalog.Store
	Source     source.Source
	Repository repository.ProductRepository
	Sessions   state.KeyValueStore
	Images     images.Syncer
	Output     afero.Fs

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(cfg.Site.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	container := &Container{
		Config: cfg,
		Store:  catalog.NewStore(),
		Output: afero.NewBasePathFs(osFs, cfg.Site.OutputDir),
	}

	if cfg.Database.Enabled || cfg.Catalog.Source == "postgres" {
		db, err := pgxpool.New(ctx,
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Database.Host,
				cfg.Database.Port,
				cfg.Database.User,
				cfg.Database.Password,
				cfg.Database.Name,
			))
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		log.Info("✅ Connected to postgres successfully")
		container.db = db
		container.Repository = repository.NewProductRepository(db)
	}

	switch cfg.Catalog.Source {
	case "http":
		container.Source = source.NewHTTPSource(cfg.Catalog.URL, cfg.Catalog.CatalogTimeout(), cfg.Catalog.MaxRetries)
	case "postgres":
		container.Source = source.NewPostgresSource(container.Repository)
	default:
		container.Source = source.NewFileSource(osFs, cfg.Catalog.Path)
	}

	switch cfg.Session.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		log.Info("✅ Connected to Redis successfully")
		container.redis = rdb
		container.Sessions = state.NewRedisStore(rdb, cfg.Session.KeyPrefix)
	default:
		container.Sessions = state.NewMemoryStore()
	}

	template, err := readTemplate(osFs, cfg.Site.TemplatePath)
	if err != nil {
		container.Close()
		return nil, err
	}

	generator := site.NewGenerator(cfg.Site, container.Output, template, time.Now())
	container.Images = images.NewSyncer(cfg.Images, container.Output)

	container.Service = service.NewService(
		container.Store,
		container.Source,
		generator,
		container.Images,
		container.Repository,
		container.Sessions,
		service.Options{
			RepairSpecifications:    cfg.Catalog.RepairSpecifications,
			TranslateSpecifications: cfg.Catalog.TranslateSpecifications,
			InquiryEmail:            cfg.Site.InquiryEmail,
			PageSize:                cfg.Navigation.PageSize,
		},
	)

	return container, nil
}

// readTemplate returns nil when the template does not exist, so commands that
// render no pages still run.
func readTemplate(fs afero.Fs, path string) ([]byte, error) {
	template, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warnf("⚠️ Page template %s not found, page generation is disabled", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page template: %w", err)
	}
	return template, nil
}

// Serve loads the catalog and serves the API and generated site until ctx is
// cancelled.
func (c *Container) Serve(ctx context.Context) error {
	if err := c.Service.LoadCatalog(ctx); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", c.Config.Server.Host, c.Config.Server.Port)
	return server.Run(ctx, addr, server.NewRouter(c.Service, c.Output))
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	var errs []error
	if closer, ok := c.Source.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if c.Images != nil {
		errs = append(errs, c.Images.Close())
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}

	log.Debug("Container shut down successfully")
	return errors.Join(errs...)
}
