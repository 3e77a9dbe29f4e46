// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Sheets   SheetsConfig
	Pipeline PipelineConfig
	Columns  ColumnsConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// SheetsConfig locates the four source ranges. Ranges use A1 notation with
// the sheet title, e.g. "VENTAS!A:R".
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	WorkbookPath    string
	SalesRange      string
	ExpensesRange   string
	PurchasesRange  string
	InventoryRange  string
}

type PipelineConfig struct {
	MinYear       int
	MaxYear       int
	ReferenceDate string
}

type DatabaseConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

type StorageConfig struct {
	Driver    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				log.Warn().Err(err).Msg("config: ignoring unreadable config file")
			}
		}

		instance = FromViper(v)
	})

	return instance
}

// FromViper builds a Config from an explicit viper instance. Defaults are
// registered on v before any value is read.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   v.GetString("GOOGLE_SHEETS_ID"),
			CredentialsJSON: v.GetString("GOOGLE_CREDENTIALS_JSON"),
			CredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
			WorkbookPath:    v.GetString("WORKBOOK_PATH"),
			SalesRange:      v.GetString("SHEETS_SALES_RANGE"),
			ExpensesRange:   v.GetString("SHEETS_EXPENSES_RANGE"),
			PurchasesRange:  v.GetString("SHEETS_PURCHASES_RANGE"),
			InventoryRange:  v.GetString("SHEETS_INVENTORY_RANGE"),
		},
		Pipeline: PipelineConfig{
			MinYear:       v.GetInt("PIPELINE_MIN_YEAR"),
			MaxYear:       v.GetInt("PIPELINE_MAX_YEAR"),
			ReferenceDate: strings.TrimSpace(v.GetString("PIPELINE_REFERENCE_DATE")),
		},
		Columns: loadColumns(v),
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:          v.GetBool("CACHE_ENABLED"),
			RedisURL:         v.GetString("REDIS_URL"),
			RedisHost:        v.GetString("REDIS_HOST"),
			RedisPort:        v.GetString("REDIS_PORT"),
			RedisPassword:    v.GetString("REDIS_PASSWORD"),
			RedisDB:          v.GetInt("REDIS_DB"),
			ReportTTLSeconds: v.GetInt("CACHE_REPORT_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Driver:    v.GetString("STORAGE_DRIVER"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
			Prefix:    v.GetString("S3_PREFIX"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("GOOGLE_SHEETS_ID", "")
	v.SetDefault("GOOGLE_CREDENTIALS_JSON", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("WORKBOOK_PATH", "")
	v.SetDefault("SHEETS_SALES_RANGE", "VENTAS!A:R")
	v.SetDefault("SHEETS_EXPENSES_RANGE", "GASTOS OPERATIVOS!A:O")
	v.SetDefault("SHEETS_PURCHASES_RANGE", "COMPRAS!A:T")
	v.SetDefault("SHEETS_INVENTORY_RANGE", "INVENTARIO!A:J")

	v.SetDefault("PIPELINE_MIN_YEAR", 2020)
	v.SetDefault("PIPELINE_MAX_YEAR", 2030)
	v.SetDefault("PIPELINE_REFERENCE_DATE", "")

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "bizdash")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_REPORT_TTL_SECONDS", 300)

	v.SetDefault("STORAGE_DRIVER", "minio")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_PREFIX", "reports/")
}
