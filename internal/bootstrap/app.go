// Package bootstrap wires configuration, storage, rendering and the HTTP
// surface into a runnable application.
package bootstrap

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adaosanto/sign-pdf/internal/render"
	"github.com/adaosanto/sign-pdf/internal/shared/config"
	"github.com/adaosanto/sign-pdf/internal/shared/server"
	"github.com/adaosanto/sign-pdf/internal/shared/storage/object"
	localstore "github.com/adaosanto/sign-pdf/internal/shared/storage/object/local"
	s3store "github.com/adaosanto/sign-pdf/internal/shared/storage/object/s3"
	"github.com/adaosanto/sign-pdf/internal/signing"
)

// App holds the shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	Store          object.ObjectStore
	Engine         render.Engine
	SigningService *signing.Service
	SigningHandler *signing.Handler
}

// Build prepares dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine := render.NewEngine()

	svc := &signing.Service{
		Engine:      engine,
		BaseURL:     cfg.ValidationBaseURL,
		TokenLength: cfg.SignatureLength,
	}
	handler := &signing.Handler{
		Service:          svc,
		Store:            store,
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
	}

	app := &App{
		Config:         cfg,
		Store:          store,
		Engine:         engine,
		SigningService: svc,
		SigningHandler: handler,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Signing: handler,
	})

	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.UploadDir), nil
	}
}
