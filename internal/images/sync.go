package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"laonlink/storefront/internal/config"
	"laonlink/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

// Dir is where product images live below the site output directory.
const Dir = "images/products"

var ErrNoSource = errors.New("images.source_url is not configured")

// Result summarizes one sync run.
type Result struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
}

type Syncer interface {
	Sync(ctx context.Context, products []domain.Product) (Result, error)
	Close() error
}

type syncer struct {
	rl         ratelimit.Limiter
	config     config.ImagesConfig
	httpClient *resty.Client
	fs         afero.Fs
}

// NewSyncer mirrors product images from the configured source into fs.
func NewSyncer(cfg config.ImagesConfig, fs afero.Fs) Syncer {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout()).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("Accept", "image/*")

	return &syncer{
		rl:         ratelimit.New(max(1, cfg.MaxRequestsPerSecond)),
		config:     cfg,
		httpClient: client,
		fs:         fs,
	}
}

// Close releases the underlying HTTP client.
func (s *syncer) Close() error {
	return s.httpClient.Close()
}

func (s *syncer) Sync(ctx context.Context, products []domain.Product) (Result, error) {
	if s.config.SourceURL == "" {
		return Result{}, ErrNoSource
	}

	if err := s.fs.MkdirAll(Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create %s: %w", Dir, err)
	}

	refs := imageRefs(products)
	log.Infof("🖼️ Syncing %d images from %s", len(refs), s.config.SourceURL)

	var downloaded, skipped, failed atomic.Int64

	errGroup, ctx := errgroup.WithContext(ctx)
	errGroup.SetLimit(max(1, s.config.MaxWorkers))

	for _, ref := range refs {
		errGroup.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			target := path.Join(Dir, ref.name)
			exists, err := afero.Exists(s.fs, target)
			if err == nil && exists {
				skipped.Add(1)
				return nil
			}

			if err := s.download(ctx, s.sourceURL(ref), target); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warnf("⚠️ Failed to download image %s: %v", ref.name, err)
				failed.Add(1)
				return nil
			}

			downloaded.Add(1)
			return nil
		})
	}

	err := errGroup.Wait()

	result := Result{
		Total:      len(refs),
		Downloaded: int(downloaded.Load()),
		Skipped:    int(skipped.Load()),
		Failed:     int(failed.Load()),
	}

	if err != nil {
		return result, err
	}

	log.Infof("✅ Images synced: %d downloaded, %d skipped, %d failed", result.Downloaded, result.Skipped, result.Failed)
	return result, nil
}

func (s *syncer) sourceURL(ref imageRef) string {
	if ref.url != "" {
		return ref.url
	}
	return strings.TrimRight(s.config.SourceURL, "/") + "/" + url.PathEscape(ref.name)
}

func (s *syncer) download(ctx context.Context, sourceURL, target string) error {
	s.rl.Take()

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(sourceURL)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	// Write to a temporary name so an interrupted download is retried next run.
	tmp := target + ".part"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}

	if err := s.fs.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", target, err)
	}

	return nil
}

type imageRef struct {
	name string
	// url is set for images referenced by absolute URL.
	url string
}

// imageRefs returns the distinct images referenced by products, in first-seen
// order. Names that cannot be stored safely are skipped.
func imageRefs(products []domain.Product) []imageRef {
	seen := make(map[string]bool)
	var refs []imageRef
	for _, p := range products {
		for _, image := range p.Images {
			ref, ok := parseImage(image)
			if !ok || seen[ref.name] {
				continue
			}
			seen[ref.name] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

func parseImage(image string) (imageRef, bool) {
	image = strings.TrimSpace(image)

	var ref imageRef
	if u, err := url.Parse(image); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		ref.url = image
		image = u.Path
	}

	name := path.Base(path.Clean("/" + image))
	if name == "/" || name == "." || name == ".." {
		return imageRef{}, false
	}
	ref.name = name
	return ref, true
}
