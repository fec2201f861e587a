package loader

import (
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/travel-web/internal/config"
)

// OptionsFromConfig maps runtime configuration onto loader options. The s3 and gs
// fetchers are always registered; their clients are created on first use.
func OptionsFromConfig(cfg config.Config, logger *zap.Logger) []Option {
	return []Option{
		WithLogger(logger),
		WithHTTPClient(&http.Client{Timeout: cfg.Data.HTTPTimeout}),
		WithS3(S3Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		}),
		WithGCS(nil),
	}
}
