package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/config"
	"github.com/peekpark/peekpark/internal/device"
	httpx "github.com/peekpark/peekpark/internal/http"
	"github.com/peekpark/peekpark/internal/http/handlers"
	"github.com/peekpark/peekpark/internal/infrastructure/auth"
	"github.com/peekpark/peekpark/internal/infrastructure/database"
	"github.com/peekpark/peekpark/internal/infrastructure/events"
	"github.com/peekpark/peekpark/internal/infrastructure/notifications"
	"github.com/peekpark/peekpark/internal/infrastructure/repositories"
	"github.com/peekpark/peekpark/internal/infrastructure/storage"
	applog "github.com/peekpark/peekpark/internal/log"
	"github.com/peekpark/peekpark/internal/metrics"
	"github.com/peekpark/peekpark/internal/parking"
	"github.com/peekpark/peekpark/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Log    zerolog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Metrics     *metrics.Metrics

	// Repositories
	UserRepo    domain.UserRepository
	SessionRepo domain.SessionRepository
	LocalStore  domain.LocalStore

	// Services
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	RevocationFeed  domain.RevocationFeed
	Provider        *services.PhoneAuthProvider
	Device          domain.DeviceIdentity
	Identity        *services.DeviceBindingService
	Sessions        *services.SessionService
	PolicySvc       domain.PolicyService
	Audit           domain.AuditLogger
	Locator         parking.Locator
}

// NewContainer connects to PostgreSQL and Redis and wires every service on top
func NewContainer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	db, err := database.Open(cfg.DSN, cfg.DBDebug)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	c, err := newContainer(cfg, logger, db, rdb.Client, metrics.New())
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return c, nil
}

func newContainer(cfg *config.Config, logger zerolog.Logger, db *gorm.DB, rdb *redis.Client, m *metrics.Metrics) (*Container, error) {
	c := &Container{Config: cfg, Log: logger, DB: db, RedisClient: rdb, Metrics: m}

	if err := c.initRepositories(); err != nil {
		return nil, err
	}
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() error {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient, c.Config.IDTokenTTL)

	switch c.Config.StorageDriver {
	case config.StorageRedis:
		c.LocalStore = storage.NewRedisStore(c.RedisClient, c.Config.StorageKeyPrefix)
	default:
		store, err := storage.NewFileStore(c.Config.StoragePath)
		if err != nil {
			return err
		}
		c.LocalStore = store
	}
	return nil
}

func (c *Container) initServices() error {
	cfg := c.Config

	c.Audit = applog.NewAuditLogger(c.Log)
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.IDTokenTTL)
	c.NotificationSvc = notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, c.Log)

	otpConfig := services.OTPConfig{
		Length:       cfg.OTP_Length,
		TTL:          cfg.OTP_TTL,
		MaxAttempts:  cfg.OTP_MaxAttempts,
		ResendWindow: cfg.OTP_ResendWindow,
	}
	c.OTPSvc = services.NewOTPService(c.NotificationSvc, auth.NewCodeHasher(cfg.OTP_HashCost), c.RedisClient, otpConfig)

	c.RevocationFeed = events.NewRedisRevocationFeed(c.RedisClient, cfg.RevocationChannel, c.Log)
	c.Provider = services.NewPhoneAuthProvider(c.OTPSvc, c.SessionRepo, c.TokenSvc, c.RevocationFeed, c.RedisClient, c.Log)

	c.Device = device.NewFingerprinter(device.NewHostProbe(device.Overrides{
		InstallationID: cfg.Device.InstallationID,
		DeviceName:     cfg.Device.DeviceName,
		DeviceType:     cfg.Device.DeviceType,
		OSVersion:      cfg.Device.OSVersion,
		ModelName:      cfg.Device.ModelName,
		Manufacturer:   cfg.Device.Manufacturer,
		Brand:          cfg.Device.Brand,
		AppVersion:     cfg.Device.AppVersion,
	}), c.Log)

	c.Identity = services.NewDeviceBindingService(c.Device, c.UserRepo, c.Provider, c.Audit, c.Log)
	c.Sessions = services.NewSessionService(c.Identity, c.LocalStore, c.RevocationFeed, c.Metrics, c.Audit, c.Log)

	cas, err := auth.NewCasbinService(c.DB)
	if err != nil {
		return fmt.Errorf("init casbin: %w", err)
	}
	c.PolicySvc = services.NewPolicyService(cas.E)
	if err := services.SeedPolicies(c.PolicySvc, auth.DefaultPolicies); err != nil {
		return fmt.Errorf("init casbin: %w", err)
	}

	if loc := cfg.Location; loc != nil {
		c.Locator = parking.StaticLocator(domain.Location{Latitude: loc.Latitude, Longitude: loc.Longitude})
	}
	return nil
}

// Router builds the local API over the container's services
func (c *Container) Router() http.Handler {
	return httpx.BuildRouter(httpx.Handlers{
		Auth:    handlers.NewAuthHandlers(c.Sessions),
		Device:  handlers.NewDeviceHandlers(c.Device),
		Parking: handlers.NewParkingHandlers(parking.DefaultCatalog(), c.Locator, c.Config.LocationTimeout),
	}, c.Sessions, c.PolicySvc, c.Metrics, c.Log)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Sessions != nil {
		c.Sessions.Stop()
	}

	var errs []error
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
