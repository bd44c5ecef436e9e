package generator

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FetchSchema downloads the schema artifact named by the config's
// schemaDownload block and writes it to input.schemaPath. A config without
// that block fails with ErrMissingSchemaDownloadConfig.
func FetchSchema(ctx context.Context, cfg *Config, httpClient *http.Client) error {
	if cfg.SchemaDownload == nil {
		return ErrMissingSchemaDownloadConfig
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.SchemaDownload.Endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "building schema download request")
	}
	for key, value := range cfg.SchemaDownload.Headers {
		req.Header.Set(key, value)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "downloading schema")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("schema download failed with status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading schema body")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Input.SchemaPath), 0o755); err != nil {
		return errors.Wrap(err, "creating schema directory")
	}
	if err := os.WriteFile(cfg.Input.SchemaPath, raw, 0o644); err != nil {
		return errors.Wrap(err, "writing schema artifact")
	}

	logrus.WithFields(logrus.Fields{
		"endpoint": cfg.SchemaDownload.Endpoint,
		"path":     cfg.Input.SchemaPath,
	}).Debug("generator: schema downloaded")
	return nil
}
