package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from .env files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AI       AIConfig       `mapstructure:"ai"`
	Export   ExportConfig   `mapstructure:"export"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
	// AllowedOrigins 以逗号分隔，空表示不允许跨域。
	AllowedOrigins string        `mapstructure:"allowed_origins"`
	PreviewCacheTTL time.Duration `mapstructure:"preview_cache_ttl"`
}

// Origins splits AllowedOrigins.
func (a APIConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(a.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	// PublicEndpoint 用于生成浏览器可访问的预签名链接，例如 https://cdn.example.com。
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AuthConfig 描述外部身份服务签发的访问令牌，本服务只做校验。
type AuthConfig struct {
	// PublicKeyPEM 优先；为空时读取 PublicKeyPath。
	PublicKeyPEM  string `mapstructure:"public_key_pem"`
	PublicKeyPath string `mapstructure:"public_key_path"`
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
}

// PublicKey returns the PEM bytes from inline config or file.
func (a AuthConfig) PublicKey() ([]byte, error) {
	if strings.TrimSpace(a.PublicKeyPEM) != "" {
		return []byte(a.PublicKeyPEM), nil
	}
	data, err := os.ReadFile(a.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read auth public key: %w", err)
	}
	return data, nil
}

// AIConfig 配置文本生成服务；APIKey 为空时建议接口只返回兜底内容。
type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExportConfig 控制导出管线。
type ExportConfig struct {
	Compress       bool          `mapstructure:"compress"`
	BrowserBin     string        `mapstructure:"browser_bin"`
	ViewportWidth  int           `mapstructure:"viewport_width"`
	Scale          float64       `mapstructure:"scale"`
	RenderTimeout  time.Duration `mapstructure:"render_timeout"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
	DownloadURLTTL time.Duration `mapstructure:"download_url_ttl"`
	Concurrency    int           `mapstructure:"concurrency"`
	MaxRetry       int           `mapstructure:"max_retry"`
	// 自定义 ATS PDF 字体，例如覆盖中文字形的 TTF
	FontRegular    string        `mapstructure:"font_regular"`
	FontBold       string        `mapstructure:"font_bold"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	IncludeCaller bool   `mapstructure:"include_caller"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from an optional .env file and environment variables (with defaults).
func Load() (*Config, error) {
	// .env 不存在时忽略，环境变量优先于文件
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", "")
	v.SetDefault("api.preview_cache_ttl", 5*time.Minute)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumekit")
	v.SetDefault("database.user", "resumekit")
	v.SetDefault("database.password", "resumekit")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "exports")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("auth.public_key_path", "keys/auth_public.pem")
	v.SetDefault("ai.model", "gpt-3.5-turbo")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("export.compress", true)
	v.SetDefault("export.viewport_width", 794)
	v.SetDefault("export.scale", 2.0)
	v.SetDefault("export.render_timeout", 60*time.Second)
	v.SetDefault("export.lock_ttl", 2*time.Minute)
	v.SetDefault("export.download_url_ttl", 15*time.Minute)
	v.SetDefault("export.concurrency", 4)
	v.SetDefault("export.max_retry", 3)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.include_caller", false)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                "API_PORT",
		"api.allowed_origins":     "API_ALLOWED_ORIGINS",
		"api.preview_cache_ttl":   "API_PREVIEW_CACHE_TTL",
		"database.host":           "DATABASE_HOST",
		"database.port":           "DATABASE_PORT",
		"database.name":           "POSTGRES_DB",
		"database.user":           "POSTGRES_USER",
		"database.password":       "POSTGRES_PASSWORD",
		"database.sslmode":        "DATABASE_SSLMODE",
		"redis.host":              "REDIS_HOST",
		"redis.port":              "REDIS_PORT",
		"minio.endpoint":          "MINIO_ENDPOINT",
		"minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":           "MINIO_USE_SSL",
		"minio.bucket":            "MINIO_BUCKET",
		"minio.region":            "MINIO_REGION",
		"minio.public_endpoint":   "MINIO_PUBLIC_ENDPOINT",
		"minio.bucket_lookup":     "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket": "MINIO_AUTO_CREATE_BUCKET",
		"auth.public_key_pem":     "AUTH_PUBLIC_KEY",
		"auth.public_key_path":    "AUTH_PUBLIC_KEY_PATH",
		"auth.issuer":             "AUTH_ISSUER",
		"auth.audience":           "AUTH_AUDIENCE",
		"ai.api_key":              "OPENAI_API_KEY",
		"ai.base_url":             "OPENAI_BASE_URL",
		"ai.model":                "OPENAI_MODEL",
		"ai.timeout":              "OPENAI_TIMEOUT",
		"export.compress":         "EXPORT_COMPRESS",
		"export.browser_bin":      "EXPORT_BROWSER_BIN",
		"export.viewport_width":   "EXPORT_VIEWPORT_WIDTH",
		"export.scale":            "EXPORT_SCALE",
		"export.render_timeout":   "EXPORT_RENDER_TIMEOUT",
		"export.lock_ttl":         "EXPORT_LOCK_TTL",
		"export.download_url_ttl": "EXPORT_DOWNLOAD_URL_TTL",
		"export.concurrency":      "EXPORT_CONCURRENCY",
		"export.max_retry":        "EXPORT_MAX_RETRY",
		"export.font_regular":     "EXPORT_FONT_REGULAR",
		"export.font_bold":        "EXPORT_FONT_BOLD",
		"logging.level":           "LOG_LEVEL",
		"logging.format":          "LOG_FORMAT",
		"logging.include_caller":  "LOG_INCLUDE_CALLER",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Auth.PublicKeyPEM == "" && cfg.Auth.PublicKeyPath == "" {
		return errors.New("auth public key is required")
	}
	if cfg.Export.ViewportWidth <= 0 {
		return errors.New("export viewport width must be positive")
	}
	if cfg.Export.Scale <= 0 {
		return errors.New("export scale must be positive")
	}
	if cfg.Export.LockTTL <= 0 {
		return errors.New("export lock ttl must be positive")
	}
	if cfg.Export.Concurrency <= 0 {
		return errors.New("export concurrency must be positive")
	}
	return nil
}
