package site

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync/atomic"
	"time"

	"laonlink/storefront/internal/config"
	"laonlink/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	productsDir  = "products"
	sitemapFile  = "sitemap.xml"
	progressStep = 100
)

var ErrNoTemplate = errors.New("page template is empty")

type Generator interface {
	ProductPages(ctx context.Context, products []domain.Product) (int, error)
	CategoryPages(ctx context.Context) (int, error)
	Sitemap(ctx context.Context, products []domain.Product) (int, error)
}

type generator struct {
	cfg       config.SiteConfig
	fs        afero.Fs
	template  []byte
	buildDate time.Time
}

// NewGenerator writes pages rendered from template into fs, which is rooted at
// the site output directory.
func NewGenerator(cfg config.SiteConfig, fs afero.Fs, template []byte, buildDate time.Time) Generator {
	return &generator{
		cfg:       cfg,
		fs:        fs,
		template:  template,
		buildDate: buildDate,
	}
}

func (g *generator) ProductPages(ctx context.Context, products []domain.Product) (int, error) {
	if len(g.template) == 0 {
		return 0, ErrNoTemplate
	}

	if err := g.fs.MkdirAll(productsDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s directory: %w", productsDir, err)
	}

	log.Infof("📝 Generating pages for %d products...", len(products))

	slugs := AssignSlugs(products)
	var count atomic.Int64

	errGroup, ctx := errgroup.WithContext(ctx)
	errGroup.SetLimit(max(1, g.cfg.Workers))

	for _, p := range products {
		errGroup.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			slug := slugs[p.ID]
			page, err := RenderProductPage(g.template, g.cfg, p, slug)
			if err != nil {
				return fmt.Errorf("failed to render product %s: %w", p.ID, err)
			}

			if err := afero.WriteFile(g.fs, path.Join(productsDir, slug+".html"), page, 0o644); err != nil {
				return fmt.Errorf("failed to write product %s: %w", p.ID, err)
			}

			if n := count.Add(1); n%progressStep == 0 {
				log.Infof("  ✓ Generated %d pages...", n)
			}
			return nil
		})
	}

	if err := errGroup.Wait(); err != nil {
		return int(count.Load()), err
	}

	log.Infof("✅ Generated %d product pages", count.Load())
	return int(count.Load()), nil
}

func (g *generator) CategoryPages(ctx context.Context) (int, error) {
	if len(g.template) == 0 {
		return 0, ErrNoTemplate
	}

	count := 0
	for _, category := range g.cfg.Categories {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		slug := Slug(category.Slug)
		if slug == "" {
			log.Warnf("⚠️ Skipping landing category %q without slug", category.Name)
			continue
		}
		category.Slug = slug

		page, err := RenderCategoryPage(g.template, g.cfg, category)
		if err != nil {
			return count, fmt.Errorf("failed to render category %s: %w", category.Name, err)
		}

		if err := g.fs.MkdirAll(slug, 0o755); err != nil {
			return count, fmt.Errorf("failed to create %s directory: %w", slug, err)
		}
		if err := afero.WriteFile(g.fs, path.Join(slug, "index.html"), page, 0o644); err != nil {
			return count, fmt.Errorf("failed to write category %s: %w", category.Name, err)
		}

		count++
		log.Infof("✓ Generated: %s/index.html", slug)
	}
	return count, nil
}

func (g *generator) Sitemap(ctx context.Context, products []domain.Product) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sitemap, count, err := BuildSitemap(g.cfg, products, AssignSlugs(products), g.buildDate)
	if err != nil {
		return 0, err
	}

	if err := afero.WriteFile(g.fs, sitemapFile, sitemap, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write sitemap: %w", err)
	}

	log.Infof("✅ Generated %s with %d URLs", sitemapFile, count)
	return count, nil
}
