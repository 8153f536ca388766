package service

import (
	"context"
	"errors"
	"fmt"

	"laonlink/storefront/internal/catalog"
	"laonlink/storefront/internal/images"
	"laonlink/storefront/internal/repository"
	"laonlink/storefront/internal/site"
	"laonlink/storefront/internal/source"
	"laonlink/storefront/internal/state"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrNoRepository     = errors.New("database is not configured")
)

// Options carries the settings the service needs beyond its collaborators.
type Options struct {
	RepairSpecifications    bool
	TranslateSpecifications bool
	InquiryEmail            string
	PageSize                int
}

type Service struct {
	store      *catalog.Store
	source     source.Source
	generator  site.Generator
	images     images.Syncer
	repository repository.ProductRepository
	sessions   state.KeyValueStore
	opts       Options
}

func NewService(
	store *catalog.Store,
	source source.Source,
	generator site.Generator,
	images images.Syncer,
	repository repository.ProductRepository,
	sessions state.KeyValueStore,
	opts Options,
) *Service {
	return &Service{
		store:      store,
		source:     source,
		generator:  generator,
		images:     images,
		repository: repository,
		sessions:   sessions,
		opts:       opts,
	}
}

// Store exposes the catalog store for read access.
func (s *Service) Store() *catalog.Store {
	return s.store
}

// LoadCatalog fetches the catalog from the configured source and loads it into
// the store. It is a no-op once the store is ready.
func (s *Service) LoadCatalog(ctx context.Context) error {
	if s.store.Ready() {
		return nil
	}

	payload, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	payload = source.Prepare(payload, source.PrepareOptions{
		RepairSpecifications:    s.opts.RepairSpecifications,
		TranslateSpecifications: s.opts.TranslateSpecifications,
	})
	if err := s.store.Load(payload.Products, payload.Categories); err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}

	return nil
}

// Generate writes every product page, the landing category pages and the
// sitemap.
func (s *Service) Generate(ctx context.Context) error {
	if err := s.LoadCatalog(ctx); err != nil {
		return err
	}

	products := s.store.AllProducts()

	log.Info("🚀 Step 1: Generating product and category pages...")
	errGroup, groupCtx := errgroup.WithContext(ctx)

	errGroup.Go(func() error {
		_, err := s.generator.ProductPages(groupCtx, products)
		return err
	})

	errGroup.Go(func() error {
		_, err := s.generator.CategoryPages(groupCtx)
		return err
	})

	if err := errGroup.Wait(); err != nil {
		return fmt.Errorf("failed to generate pages: %w", err)
	}

	log.Info("🚀 Step 2: Generating sitemap...")
	if _, err := s.generator.Sitemap(ctx, products); err != nil {
		return fmt.Errorf("failed to generate sitemap: %w", err)
	}

	log.Info("✅ Done! All pages generated successfully.")
	return nil
}

// Sitemap writes only sitemap.xml.
func (s *Service) Sitemap(ctx context.Context) (int, error) {
	if err := s.LoadCatalog(ctx); err != nil {
		return 0, err
	}
	return s.generator.Sitemap(ctx, s.store.AllProducts())
}

// SyncImages mirrors product images into the site output.
func (s *Service) SyncImages(ctx context.Context) (images.Result, error) {
	if err := s.LoadCatalog(ctx); err != nil {
		return images.Result{}, err
	}
	return s.images.Sync(ctx, s.store.AllProducts())
}

// Import copies the loaded catalog into postgres.
func (s *Service) Import(ctx context.Context) (int, error) {
	if s.repository == nil {
		return 0, ErrNoRepository
	}

	if err := s.LoadCatalog(ctx); err != nil {
		return 0, err
	}

	if err := s.repository.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	products := s.store.AllProducts()
	if err := s.repository.SaveProducts(ctx, products); err != nil {
		return 0, err
	}

	log.Infof("✅ Imported %d products into postgres", len(products))
	return len(products), nil
}
