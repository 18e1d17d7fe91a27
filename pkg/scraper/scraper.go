package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"apressdl/internal/downloader"
	"apressdl/pkg/config"
	"apressdl/pkg/logger"
	"apressdl/pkg/portal"
	"apressdl/pkg/ratelimit"
	"apressdl/pkg/storage"
)

// Sentinel errors the CLI maps to exit codes
var (
	ErrAuthFailed          = errors.New("authentication failed")
	ErrDestinationUnusable = errors.New("destination path unusable")
)

// Scraper sequences the download run: authenticate, enumerate the catalog,
// then download every product in listing order.
type Scraper struct {
	client *portal.Client
	config *config.Config
	logger logger.Logger
}

// New creates a Scraper from the configuration
func New(cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	client, err := portal.NewClient(cfg.Portal.BaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal client: %w", err)
	}

	client.SetPageSize(cfg.Portal.PageSize)

	if cfg.Portal.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Portal.UserAgent)
	}

	if cfg.RateLimit.RequestsPerMinute > 0 {
		client.SetLimiter(ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute))
	}

	return &Scraper{
		client: client,
		config: cfg,
		logger: log,
	}, nil
}

// Login authenticates the session. A rejected credential pair yields
// ErrAuthFailed; transport failures come back as portal errors.
func (s *Scraper) Login(ctx context.Context, username, password string) error {
	ok, err := s.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthFailed
	}
	return nil
}

// ListProducts fetches the full catalog without downloading anything
func (s *Scraper) ListProducts(ctx context.Context) ([]portal.Product, error) {
	return s.client.FetchProducts(ctx)
}

// Run performs the whole download sequence for an authenticated session:
// catalog enumeration followed by sequential downloads. Call Login first.
func (s *Scraper) Run(ctx context.Context) error {
	store, err := storage.NewManager(s.config.Output.BaseDirectory)
	if err != nil {
		s.logger.WithError(err).ErrorWithFields("could not create / use path", map[string]interface{}{
			"path": s.config.Output.BaseDirectory,
		})
		return fmt.Errorf("%w: %v", ErrDestinationUnusable, err)
	}

	products, err := s.client.FetchProducts(ctx)
	if err != nil {
		return err
	}

	s.logger.InfoWithFields("found products in your account", map[string]interface{}{
		"count": len(products),
	})

	dl := downloader.New(s.client, store, s.logger, s.config.Output.OverwriteExisting)

	for i := range products {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := dl.DownloadProduct(ctx, &products[i]); err != nil {
			return err
		}
	}

	return nil
}
