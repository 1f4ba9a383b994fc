package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Upload    UploadConfig
	MinIO     MinIOConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	PublicBaseURL  string
	AllowedOrigins []string
	TrustedProxies []string
	LogLevel       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// IsProduction reports whether internal error details must be hidden from clients.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type StoreConfig struct {
	Driver   string // "file" or "mongo"
	DataFile string
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type UploadConfig struct {
	Driver       string // "local" or "minio"
	Dir          string
	MaxImageSize int64
	MaxCVSize    int64
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type MailConfig struct {
	Driver       string // "smtp", "resend" or "log"
	From         string
	To           string
	Timeout      time.Duration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ResendAPIKey string
	ResendURL    string
}

// RateLimitClass is a fixed budget of Max requests per Window.
type RateLimitClass struct {
	Max    int
	Window time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	UseRedis bool
	Classes  map[string]RateLimitClass
}

type AdminConfig struct {
	// BootstrapPassword seeds the admin hash when no document exists yet.
	BootstrapPassword string
}

// Rate-limit class names. Each route belongs to exactly one class besides general.
const (
	ClassGeneral      = "general"
	ClassAuth         = "auth"
	ClassContact      = "contact"
	ClassUpload       = "upload"
	ClassContentWrite = "content_write"
)

var defaultClasses = map[string]RateLimitClass{
	ClassGeneral:      {Max: 100, Window: 15 * time.Minute},
	ClassAuth:         {Max: 5, Window: 15 * time.Minute},
	ClassContact:      {Max: 5, Window: time.Hour},
	ClassUpload:       {Max: 20, Window: time.Hour},
	ClassContentWrite: {Max: 30, Window: 15 * time.Minute},
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "file")
	v.SetDefault("DATA_FILE", "data/data.json")
	v.SetDefault("MONGODB_DATABASE", "portfolio")
	v.SetDefault("MONGODB_COLLECTION", "portfolios")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("UPLOAD_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "data/uploads")
	v.SetDefault("MAIL_DRIVER", "log")
	v.SetDefault("MAIL_TIMEOUT", "10s")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("RESEND_ENDPOINT", "https://api.resend.com/emails")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)

	port := firstNonEmpty(v.GetString("SERVER_PORT"), v.GetString("PORT"), "5001")
	// no viper default here: it would shadow NODE_ENV
	env := firstNonEmpty(v.GetString("SERVER_ENVIRONMENT"), v.GetString("NODE_ENV"), "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           port,
			Host:           v.GetString("SERVER_HOST"),
			Environment:    env,
			PublicBaseURL:  strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(v.GetString("STORE_DRIVER")),
			DataFile: v.GetString("DATA_FILE"),
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Upload: UploadConfig{
			Driver:       strings.ToLower(v.GetString("UPLOAD_DRIVER")),
			Dir:          v.GetString("UPLOAD_DIR"),
			MaxImageSize: 10 << 20,
			MaxCVSize:    10 << 20,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			PublicURL: strings.TrimRight(v.GetString("MINIO_PUBLIC_URL"), "/"),
		},
		Mail: MailConfig{
			Driver:       strings.ToLower(v.GetString("MAIL_DRIVER")),
			From:         v.GetString("MAIL_FROM"),
			To:           v.GetString("MAIL_TO"),
			Timeout:      v.GetDuration("MAIL_TIMEOUT"),
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUser:     v.GetString("SMTP_USER"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			ResendURL:    v.GetString("RESEND_ENDPOINT"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			Classes:  loadClasses(v),
		},
		Admin: AdminConfig{
			BootstrapPassword: v.GetString("ADMIN_PASSWORD"),
		},
	}
	if cfg.Mail.To == "" {
		cfg.Mail.To = cfg.Mail.From
	}

	return cfg, nil
}

// Validate checks the combinations the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWT.Secret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.Store.Driver {
	case "file":
		if c.Store.DataFile == "" {
			errs = append(errs, errors.New("DATA_FILE is required for the file store"))
		}
	case "mongo":
		if c.MongoDB.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	switch c.Upload.Driver {
	case "local":
		if c.Upload.Dir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for local uploads"))
		}
	case "minio":
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for minio uploads"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown UPLOAD_DRIVER %q", c.Upload.Driver))
	}
	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for smtp mail"))
		}
	case "resend":
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for resend mail"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver))
	}
	if c.RateLimit.UseRedis && c.Redis.Addr() == "" {
		errs = append(errs, errors.New("REDIS_HOST is required when RATE_LIMIT_USE_REDIS is set"))
	}
	return errors.Join(errs...)
}

func loadClasses(v *viper.Viper) map[string]RateLimitClass {
	out := make(map[string]RateLimitClass, len(defaultClasses))
	for name, def := range defaultClasses {
		key := "RATE_LIMIT_" + strings.ToUpper(name)
		c := def
		if n := v.GetInt(key + "_MAX"); n > 0 {
			c.Max = n
		}
		if d := v.GetDuration(key + "_WINDOW"); d > 0 {
			c.Window = d
		}
		out[name] = c
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
