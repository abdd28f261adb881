package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	JWTSecret       string
	AccessTokenTTL  string
	RefreshTokenTTL string

	Log      string
	LogLevel string
	Env      string // dev|prod

	// Публичный адрес деплоя — из него строятся ссылки-приглашения.
	BaseURL string

	// S3-совместимое объектное хранилище (обложки и вложения).
	StorageEndpoint   string
	StorageRegion     string
	StorageAccessKey  string
	StorageSecretKey  string
	StoragePublicURL  string
	CoversBucket      string
	AttachmentsBucket string

	InviteTTLDays string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует — чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  def(os.Getenv("ACCESS_TOKEN_EXPIRY"), "15m"),
		RefreshTokenTTL: def(os.Getenv("REFRESH_TOKEN_EXPIRY"), "720h"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		BaseURL: strings.TrimRight(os.Getenv("BASE_URL"), "/"),

		StorageEndpoint:   os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:     def(os.Getenv("STORAGE_REGION"), "us-east-1"),
		StorageAccessKey:  os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:  os.Getenv("STORAGE_SECRET_KEY"),
		StoragePublicURL:  strings.TrimRight(os.Getenv("STORAGE_PUBLIC_URL"), "/"),
		CoversBucket:      def(os.Getenv("COVERS_BUCKET"), "covers"),
		AttachmentsBucket: def(os.Getenv("ATTACHMENTS_BUCKET"), "attachments"),

		InviteTTLDays: def(os.Getenv("INVITE_TTL_DAYS"), "7"),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
// Отсутствие обязательных настроек — повод не стартовать вовсе,
// а не деградировать молча.
func (c *Config) Validate() (warnings []string, err error) {
	// Критичные: БД
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	// Критичные: секрет сессий
	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}

	// Критичные: базовый URL — без него не построить ссылку-приглашение
	if c.BaseURL == "" {
		return nil, fmt.Errorf("BASE_URL is empty")
	}

	// Критичные: объектное хранилище
	if c.StorageEndpoint == "" || c.StorageAccessKey == "" || c.StorageSecretKey == "" {
		return nil, fmt.Errorf("incomplete storage config (STORAGE_ENDPOINT/STORAGE_ACCESS_KEY/STORAGE_SECRET_KEY)")
	}

	if c.StoragePublicURL == "" {
		warnings = append(warnings, "STORAGE_PUBLIC_URL is empty, using STORAGE_ENDPOINT for public links")
	}

	// PORT
	if c.Port == "" {
		warnings = append(warnings, "PORT is empty, using default 8080")
	}

	return warnings, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// PublicStorageURL — база для публичных ссылок на объекты.
func (c *Config) PublicStorageURL() string {
	if c.StoragePublicURL != "" {
		return c.StoragePublicURL
	}
	return strings.TrimRight(c.StorageEndpoint, "/")
}
