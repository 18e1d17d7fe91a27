package downloader

import (
	"context"
	"strings"

	"apressdl/pkg/logger"
	"apressdl/pkg/portal"
	"apressdl/pkg/storage"
)

// Downloader writes a product's available formats to disk, one file at a
// time, skipping files already present unless overwrite is enabled.
type Downloader struct {
	client    *portal.Client
	storage   *storage.Manager
	logger    logger.Logger
	overwrite bool
}

// New creates a Downloader
func New(client *portal.Client, store *storage.Manager, log logger.Logger, overwrite bool) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Downloader{
		client:    client,
		storage:   store,
		logger:    log,
		overwrite: overwrite,
	}
}

// DownloadProduct downloads every format of a product into its directory
// under the base path. Cancellation is checked before each file; download
// errors propagate without retry or partial-file cleanup.
func (d *Downloader) DownloadProduct(ctx context.Context, product *portal.Product) error {
	name := product.DirName()

	if _, err := d.storage.EnsureProductDir(name); err != nil {
		return err
	}

	d.logger.InfoWithFields("downloading product", map[string]interface{}{
		"title":   product.Title,
		"dir":     name,
		"formats": strings.Join(product.Formats(), "|"),
	})

	for _, ext := range product.Formats() {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := d.storage.FilePath(name, ext)

		if d.storage.Exists(target) && !d.overwrite {
			d.logger.InfoWithFields("not re-downloading", map[string]interface{}{
				"file": target,
			})
			continue
		}

		if err := d.streamFile(ctx, product.Links[ext], target); err != nil {
			return err
		}
	}

	return nil
}

// streamFile streams a download URL into the target file
func (d *Downloader) streamFile(ctx context.Context, url, filename string) error {
	d.logger.DebugWithFields("downloading file", map[string]interface{}{
		"url":  url,
		"file": filename,
	})

	resp, err := d.client.OpenDownload(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	written, err := d.storage.Save(resp.Body, filename)
	if err != nil {
		return err
	}

	d.logger.DebugWithFields("download complete", map[string]interface{}{
		"file":  filename,
		"bytes": written,
	})

	return nil
}
