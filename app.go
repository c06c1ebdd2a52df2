package main

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/config"
	"github.com/restaurant-oms/oms-api/models"
	"github.com/restaurant-oms/oms-api/services"
)

// application holds the wired services shared by every request.
type application struct {
	cfg       *config.Config
	db        *gorm.DB
	lg        *zap.Logger
	catalog   *services.CatalogService
	orders    *services.OrderService
	reporting *services.ReportingService
	analytics *services.AnalyticsService
	auth      *services.AuthService
}

// newApplication migrates the schema, builds the services and seeds the
// bootstrap admin account.
func newApplication(ctx context.Context, cfg *config.Config, db *gorm.DB, lg *zap.Logger) (*application, error) {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return nil, errors.Wrap(err, "migrate database")
	}
	lg.Info("Database migration completed successfully")

	images, err := newImageService(ctx, cfg, lg)
	if err != nil {
		return nil, err
	}

	tokens, err := services.NewTokenManager(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create token manager")
	}

	catalog := services.NewCatalogService(db, images, lg)
	orders := services.NewOrderService(db, catalog, lg)
	reporting := services.NewReportingService(db, lg)
	auth := services.NewAuthService(db, tokens, lg)

	if err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return nil, errors.Wrap(err, "ensure admin user")
	}

	return &application{
		cfg:       cfg,
		db:        db,
		lg:        lg,
		catalog:   catalog,
		orders:    orders,
		reporting: reporting,
		analytics: services.NewAnalyticsService(db, reporting, orders, lg),
		auth:      auth,
	}, nil
}

func newImageService(ctx context.Context, cfg *config.Config, lg *zap.Logger) (services.ImageService, error) {
	switch cfg.ImageStorage {
	case "s3":
		s3Service, err := services.NewS3Service(ctx, cfg, lg)
		if err != nil {
			return nil, errors.Wrap(err, "create S3 service")
		}
		lg.Info("Product images stored in S3", zap.String("bucket", cfg.AWSS3Bucket))
		return services.NewS3ImageService(s3Service), nil
	default:
		lg.Info("Product images stored on local disk", zap.String("dir", cfg.UploadDir))
		return services.NewLocalImageService(cfg.UploadDir), nil
	}
}
