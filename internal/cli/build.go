package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lvillar/docrender"
	"github.com/lvillar/docrender/cache"
	"github.com/lvillar/docrender/canvas"
	"github.com/lvillar/docrender/config"
	"github.com/lvillar/docrender/doctpl"
	"github.com/lvillar/docrender/upload"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// newRenderer builds a Renderer from the render and fields sections of
// cfg. Missing optional assets are logged and skipped.
func newRenderer(cfg config.Config, logger *log.Logger, extra ...docrender.Option) (*docrender.Renderer, error) {
	rule, err := doctpl.ParseOptionalRule(cfg.Render.OptionalFields)
	if err != nil {
		return nil, err
	}
	opts := []docrender.Option{
		docrender.WithLogger(logger),
		docrender.WithOptionalFieldRule(rule),
		docrender.WithDeliveryItemPagination(cfg.Render.PaginateDeliveryItems),
		docrender.WithBarcodes(cfg.Render.Barcode),
		docrender.WithCompression(cfg.Render.Compress),
	}

	if path := cfg.Render.Logo; path != "" {
		img, err := canvas.LoadImage(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("logo not found, rendering without it", "path", path)
		case err != nil:
			return nil, fmt.Errorf("logo: %w", err)
		default:
			opts = append(opts, docrender.WithLogo(img))
		}
	}
	if path := cfg.Render.Stationery; path != "" {
		if _, err := os.Stat(path); err != nil {
			logger.Warn("stationery not found, rendering without it", "path", path)
		} else {
			opts = append(opts, docrender.WithStationery(path))
		}
	}
	if len(cfg.Fields.DeliveryNote) > 0 {
		opts = append(opts, docrender.WithFieldPositions(docrender.DeliveryNote, cfg.Fields.DeliveryNote))
	}
	if len(cfg.Fields.Quotation) > 0 {
		opts = append(opts, docrender.WithFieldPositions(docrender.Quotation, cfg.Fields.Quotation))
	}

	return docrender.New(append(opts, extra...)...)
}

// newUploader builds the configured storage. The returned close function
// releases connections and is never nil.
func newUploader(ctx context.Context, cfg config.Storage) (upload.Uploader, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	var store upload.Uploader
	closer := noop
	switch cfg.Kind {
	case config.StorageNone:
		return upload.Null{}, noop, nil
	case config.StorageDir:
		d, err := upload.NewDir(cfg.Dir)
		if err != nil {
			return nil, noop, err
		}
		store = d
	case config.StorageGridFS:
		g, client, err := upload.ConnectGridFS(ctx, cfg.MongoURI, cfg.Database, cfg.Bucket)
		if err != nil {
			return nil, noop, err
		}
		store, closer = g, client.Disconnect
	default:
		return nil, noop, fmt.Errorf("unknown storage kind %q", cfg.Kind)
	}

	if cfg.Retries > 1 {
		store = upload.WithRetry(store, cfg.Retries, cfg.RetryDelay.Duration)
	}
	return store, closer, nil
}

// newCache builds the configured document cache.
func newCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	switch cfg.Kind {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return nil, fmt.Errorf("unknown cache kind %q", cfg.Kind)
}

// folders returns the upload folder of each kind.
func folders(cfg config.Storage) map[docrender.Kind]string {
	return map[docrender.Kind]string{
		docrender.DeliveryNote: cfg.DeliveryNoteFolder,
		docrender.Quotation:    cfg.QuotationFolder,
	}
}
