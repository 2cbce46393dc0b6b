package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/peekpark/peekpark/internal/phone"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_PATH is unset
const DefaultPath = "config/config.yml"

// Storage drivers for the device-local session store
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

type AppConfig struct {
	Port            int    `yaml:"port"`
	GinMode         string `yaml:"gin_mode"`
	Environment     string `yaml:"environment"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Debug bool   `yaml:"debug"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	IDTokenTTL string `yaml:"id_token_ttl"`
}

type OTPConfig struct {
	TTL          string `yaml:"ttl"`
	Length       int    `yaml:"length"`
	MaxAttempts  int    `yaml:"max_attempts"`
	ResendWindow string `yaml:"resend_window"`
	HashCost     int    `yaml:"hash_cost"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	KeyPrefix string `yaml:"key_prefix"`
}

type DeviceConfig struct {
	InstallationID string `yaml:"installation_id"`
	DeviceName     string `yaml:"device_name"`
	DeviceType     string `yaml:"device_type"`
	OSVersion      string `yaml:"os_version"`
	ModelName      string `yaml:"model_name"`
	Manufacturer   string `yaml:"manufacturer"`
	Brand          string `yaml:"brand"`
	AppVersion     string `yaml:"app_version"`
}

// LocationConfig pins the device position reported to the parking finder
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type ParkingConfig struct {
	LocationTimeout string          `yaml:"location_timeout"`
	Location        *LocationConfig `yaml:"location"`
}

type EventsConfig struct {
	RevocationChannel string `yaml:"revocation_channel"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Storage  StorageConfig  `yaml:"storage"`
	Device   DeviceConfig   `yaml:"device"`
	Parking  ParkingConfig  `yaml:"parking"`
	Events   EventsConfig   `yaml:"events"`
}

type Config struct {
	Port            string
	GinMode         string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	DSN           string
	DBDebug       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTIssuer  string
	IDTokenTTL time.Duration

	OTP_TTL          time.Duration
	OTP_Length       int
	OTP_MaxAttempts  int
	OTP_ResendWindow time.Duration
	OTP_HashCost     int

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	StorageDriver    string
	StoragePath      string
	StorageKeyPrefix string

	Device DeviceConfig

	LocationTimeout time.Duration
	Location        *LocationConfig

	RevocationChannel string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Defaults returns the configuration used when no config file exists
func Defaults() ConfigFile {
	return ConfigFile{
		App: AppConfig{
			Port:            8080,
			GinMode:         "release",
			Environment:     "development",
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{DSN: "host=localhost user=peekpark password=peekpark dbname=peekpark port=5432 sslmode=disable"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		JWT:      JWTConfig{Issuer: "peekpark", IDTokenTTL: "1h"},
		OTP:      OTPConfig{TTL: "5m", Length: 6, MaxAttempts: 5, ResendWindow: "60s", HashCost: 10},
		Storage:  StorageConfig{Driver: StorageFile, Path: "data/session.json", KeyPrefix: "local:"},
		Parking:  ParkingConfig{LocationTimeout: "15s"},
		Events:   EventsConfig{RevocationChannel: "peekpark:revocations"},
	}
}

// Load reads .env, then CONFIG_PATH (default config/config.yml), then applies environment overrides
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(env("CONFIG_PATH", DefaultPath))
}

// LoadFrom reads the config file at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return build(configFile)
}

func build(f *ConfigFile) (*Config, error) {
	durations := []struct {
		name  string
		value string
		out   *time.Duration
	}{
		{"app read timeout", f.App.ReadTimeout, new(time.Duration)},
		{"app write timeout", f.App.WriteTimeout, new(time.Duration)},
		{"app shutdown timeout", f.App.ShutdownTimeout, new(time.Duration)},
		{"JWT ID token TTL", f.JWT.IDTokenTTL, new(time.Duration)},
		{"OTP TTL", f.OTP.TTL, new(time.Duration)},
		{"OTP resend window", f.OTP.ResendWindow, new(time.Duration)},
		{"parking location timeout", f.Parking.LocationTimeout, new(time.Duration)},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.out = v
	}

	cfg := &Config{
		Port:            env("PORT", strconv.Itoa(f.App.Port)),
		GinMode:         env("GIN_MODE", f.App.GinMode),
		Environment:     env("APP_ENV", f.App.Environment),
		ReadTimeout:     *durations[0].out,
		WriteTimeout:    *durations[1].out,
		ShutdownTimeout: *durations[2].out,

		DSN:           env("DATABASE_DSN", f.Database.DSN),
		DBDebug:       f.Database.Debug,
		RedisAddr:     env("REDIS_ADDR", f.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", f.Redis.Password),
		RedisDB:       envInt("REDIS_DB", f.Redis.DB),

		JWTSecret:  env("JWT_SECRET", f.JWT.Secret),
		JWTIssuer:  env("JWT_ISSUER", f.JWT.Issuer),
		IDTokenTTL: *durations[3].out,

		OTP_TTL:          *durations[4].out,
		OTP_Length:       f.OTP.Length,
		OTP_MaxAttempts:  f.OTP.MaxAttempts,
		OTP_ResendWindow: *durations[5].out,
		OTP_HashCost:     f.OTP.HashCost,

		TwilioSID:   env("TWILIO_ACCOUNT_SID", f.Twilio.AccountSID),
		TwilioToken: env("TWILIO_AUTH_TOKEN", f.Twilio.AuthToken),
		TwilioFrom:  env("TWILIO_FROM_NUMBER", f.Twilio.FromNumber),

		StorageDriver:    env("STORAGE_DRIVER", f.Storage.Driver),
		StoragePath:      env("STORAGE_PATH", f.Storage.Path),
		StorageKeyPrefix: f.Storage.KeyPrefix,

		Device: f.Device,

		LocationTimeout: *durations[6].out,
		Location:        f.Parking.Location,

		RevocationChannel: f.Events.RevocationChannel,
	}
	cfg.Device.InstallationID = env("DEVICE_INSTALLATION_ID", cfg.Device.InstallationID)

	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.OTP_Length != phone.CodeLength {
		return nil, fmt.Errorf("otp length must be %d, got %d", phone.CodeLength, cfg.OTP_Length)
	}
	switch cfg.StorageDriver {
	case StorageFile, StorageRedis:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	config := Defaults()

	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
