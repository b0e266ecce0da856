package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DB      DBConfig      `mapstructure:"db"      yaml:"db"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	MinIO   MinIOConfig   `mapstructure:"minio"   yaml:"minio"`
	JWT     JWTConfig     `mapstructure:"jwt"     yaml:"jwt"`
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Log     LogConfig     `mapstructure:"log"     yaml:"log"`
}

type DBConfig struct {
	Driver   string `mapstructure:"driver"   yaml:"driver"`
	Path     string `mapstructure:"path"     yaml:"path"`
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     string `mapstructure:"port"     yaml:"port"`
	User     string `mapstructure:"user"     yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Name     string `mapstructure:"name"     yaml:"name"`
	SSLMode  string `mapstructure:"sslmode"  yaml:"sslmode"`
}

type StorageConfig struct {
	Backend   string `mapstructure:"backend"    yaml:"backend"`
	UploadDir string `mapstructure:"upload_dir" yaml:"upload_dir"`
}

type MinIOConfig struct {
	Endpoint       string `mapstructure:"endpoint"        yaml:"endpoint"`
	PublicEndpoint string `mapstructure:"public_endpoint" yaml:"public_endpoint"`
	AccessKey      string `mapstructure:"access_key"      yaml:"access_key"`
	SecretKey      string `mapstructure:"secret_key"      yaml:"secret_key"`
	Bucket         string `mapstructure:"bucket"          yaml:"bucket"`
	Region         string `mapstructure:"region"          yaml:"region"`
	UseSSL         bool   `mapstructure:"use_ssl"         yaml:"use_ssl"`
}

type JWTConfig struct {
	Secret          string `mapstructure:"secret"           yaml:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours" yaml:"expiration_hours"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"          yaml:"port"`
	FrontendURL string `mapstructure:"frontend_url"  yaml:"frontend_url"`
	BodyLimitMB int    `mapstructure:"body_limit_mb" yaml:"body_limit_mb"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"        yaml:"level"`
	File       string `mapstructure:"file"         yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"  yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"  yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress"     yaml:"compress"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StorageLocal = "local"
	StorageMinIO = "minio"
)

var envFiles = []string{".env", ".env.local"}

var configPaths = []string{".", "./config", "/etc/datahub"}

func Default() *Config {
	return &Config{
		DB: DBConfig{
			Driver:   DriverSQLite,
			Path:     filepath.Join("instance", "app.db"),
			Host:     "localhost",
			Port:     "5432",
			User:     "datahub",
			Password: "datahub_secret",
			Name:     "datahub",
			SSLMode:  "disable",
		},
		Storage: StorageConfig{
			Backend:   StorageLocal,
			UploadDir: filepath.Join("instance", "uploads"),
		},
		MinIO: MinIOConfig{
			Endpoint:       "localhost:9000",
			PublicEndpoint: "localhost:9000",
			AccessKey:      "datahub",
			SecretKey:      "datahub_secret",
			Bucket:         "datahub",
		},
		JWT: JWTConfig{
			Secret:          "change-me-in-production",
			ExpirationHours: 24,
		},
		Server: ServerConfig{
			Port:        "8080",
			FrontendURL: "http://localhost:5173",
			BodyLimitMB: 100,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Load reads configuration from the environment only.
func Load() *Config {
	cfg := Default()
	applyEnv(cfg)
	return cfg
}

// LoadFile layers defaults, an optional YAML file and the environment, in
// that order. An empty path searches datahub.yaml in the usual locations.
func LoadFile(path string) (*Config, error) {
	loadDotEnv(path)

	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("datahub")
		v.SetConfigType("yaml")
		for _, p := range configPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadDotEnv(path string) {
	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
	if path != "" {
		dir := filepath.Dir(path)
		for _, envFile := range envFiles {
			_ = godotenv.Load(filepath.Join(dir, envFile))
		}
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("db.driver", d.DB.Driver)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("db.host", d.DB.Host)
	v.SetDefault("db.port", d.DB.Port)
	v.SetDefault("db.user", d.DB.User)
	v.SetDefault("db.password", d.DB.Password)
	v.SetDefault("db.name", d.DB.Name)
	v.SetDefault("db.sslmode", d.DB.SSLMode)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.upload_dir", d.Storage.UploadDir)

	v.SetDefault("minio.endpoint", d.MinIO.Endpoint)
	v.SetDefault("minio.public_endpoint", d.MinIO.PublicEndpoint)
	v.SetDefault("minio.access_key", d.MinIO.AccessKey)
	v.SetDefault("minio.secret_key", d.MinIO.SecretKey)
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("minio.region", d.MinIO.Region)
	v.SetDefault("minio.use_ssl", d.MinIO.UseSSL)

	v.SetDefault("jwt.secret", d.JWT.Secret)
	v.SetDefault("jwt.expiration_hours", d.JWT.ExpirationHours)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.frontend_url", d.Server.FrontendURL)
	v.SetDefault("server.body_limit_mb", d.Server.BodyLimitMB)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// applyEnv overrides cfg with any environment variable that is set.
func applyEnv(cfg *Config) {
	cfg.DB.Driver = getEnv("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.Path = getEnv("DB_PATH", cfg.DB.Path)
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", cfg.DB.SSLMode)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", cfg.Storage.UploadDir)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.PublicEndpoint = getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", cfg.MinIO.PublicEndpoint))
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.Region = getEnv("MINIO_REGION", cfg.MinIO.Region)
	cfg.MinIO.UseSSL = getEnvAsBool("MINIO_USE_SSL", cfg.MinIO.UseSSL)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.ExpirationHours = getEnvAsInt("JWT_EXPIRATION_HOURS", cfg.JWT.ExpirationHours)

	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.FrontendURL = getEnv("FRONTEND_URL", cfg.Server.FrontendURL)
	cfg.Server.BodyLimitMB = getEnvAsInt("BODY_LIMIT_MB", cfg.Server.BodyLimitMB)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.MaxSizeMB = getEnvAsInt("LOG_MAX_SIZE_MB", cfg.Log.MaxSizeMB)
	cfg.Log.MaxBackups = getEnvAsInt("LOG_MAX_BACKUPS", cfg.Log.MaxBackups)
	cfg.Log.MaxAgeDays = getEnvAsInt("LOG_MAX_AGE_DAYS", cfg.Log.MaxAgeDays)
	cfg.Log.Compress = getEnvAsBool("LOG_COMPRESS", cfg.Log.Compress)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
