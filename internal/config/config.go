package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/fiscal/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Postgres   PostgresConfig   `mapstructure:"postgres" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Vault      VaultConfig      `mapstructure:"vault" validate:"required"`
	Authority  AuthorityConfig  `mapstructure:"authority" validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required,oneof=local api"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

// AuthConfig holds the secret used to verify bearer tokens. Tokens are
// issued elsewhere, this service only verifies them.
type AuthConfig struct {
	Secret string `mapstructure:"secret" validate:"required"`
}

// VaultConfig configures where company certificates live and the master key
// that decrypts their passwords.
type VaultConfig struct {
	CertificateDir  string `mapstructure:"certificate_dir" validate:"required"`
	MasterKey       string `mapstructure:"master_key" validate:"required,hexadecimal,len=64"`
	LoadConcurrency int    `mapstructure:"load_concurrency" validate:"min=0"`
}

// AuthorityConfig configures the tax authority client
type AuthorityConfig struct {
	Production                bool          `mapstructure:"production"`
	TestURL                   string        `mapstructure:"test_url" validate:"required,url"`
	ProductionURL             string        `mapstructure:"production_url" validate:"required,url"`
	Timeout                   time.Duration `mapstructure:"timeout" validate:"required"`
	SoftwareSupplierTaxNumber int64         `mapstructure:"software_supplier_tax_number" validate:"required"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional, real environment variables always win
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fiscal")

	v.SetEnvPrefix("FISCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are missing from the config file
func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "fiscal")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "fiscal")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("auth.secret", "")
	v.SetDefault("vault.certificate_dir", "./data/certificates")
	v.SetDefault("vault.master_key", "")
	v.SetDefault("vault.load_concurrency", 4)
	v.SetDefault("authority.production", false)
	v.SetDefault("authority.test_url", "https://blagajne-test.fu.gov.si:9002")
	v.SetDefault("authority.production_url", "https://blagajne.fu.gov.si:9003")
	v.SetDefault("authority.timeout", 10*time.Second)
	v.SetDefault("authority.software_supplier_tax_number", 0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a configuration for local development and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Vault: VaultConfig{
			CertificateDir:  "./data/certificates",
			LoadConcurrency: 4,
		},
		Authority: AuthorityConfig{
			TestURL:       "https://blagajne-test.fu.gov.si:9002",
			ProductionURL: "https://blagajne.fu.gov.si:9003",
			Timeout:       10 * time.Second,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// MasterKeyBytes decodes the hex master key
func (c VaultConfig) MasterKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("vault master key is not valid hex: %w", err)
	}
	return key, nil
}

// BaseURL returns the authority endpoint for the configured environment
func (c AuthorityConfig) BaseURL() string {
	if c.Production {
		return c.ProductionURL
	}
	return c.TestURL
}
