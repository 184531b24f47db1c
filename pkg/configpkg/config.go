// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver              string        `mapstructure:"DB_DRIVER"`
	DBSource              string        `mapstructure:"DB_SOURCE"`
	ServerAddress         string        `mapstructure:"SERVER_ADDRESS"`
	TokenKind             string        `mapstructure:"TOKEN_KIND"`
	TokenSymmetricKey     string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration   time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration  time.Duration `mapstructure:"REFRESH_TOKEN_DURATION"`
	TransactionServiceURL string        `mapstructure:"TRANSACTION_SERVICE_URL"`
	NotifierTimeout       time.Duration `mapstructure:"NOTIFIER_TIMEOUT"`
	TxTimeout             time.Duration `mapstructure:"TX_TIMEOUT"`
	AdminUsername         string        `mapstructure:"ADMIN_USERNAME"`
	AdminPassword         string        `mapstructure:"ADMIN_PASSWORD"`
	Environement          string        `mapstructure:"GO_ENV"`
}

var keys = []string{
	"DB_DRIVER",
	"DB_SOURCE",
	"SERVER_ADDRESS",
	"TOKEN_KIND",
	"TOKEN_SYMMETRIC_KEY",
	"ACCESS_TOKEN_DURATION",
	"REFRESH_TOKEN_DURATION",
	"TRANSACTION_SERVICE_URL",
	"NOTIFIER_TIMEOUT",
	"TX_TIMEOUT",
	"ADMIN_USERNAME",
	"ADMIN_PASSWORD",
	"GO_ENV",
}

// Load read configuration from file or environment variables.
//
// An optional .env file next to app.env is loaded into the process environment
// first, so local secrets override the committed defaults.
func Load(path string) (Config, error) {
	var c Config

	err := godotenv.Load(filepath.Join(path, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, err
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("TOKEN_KIND", "paseto")
	v.SetDefault("NOTIFIER_TIMEOUT", 2*time.Second)
	v.SetDefault("TX_TIMEOUT", 5*time.Second)

	v.AutomaticEnv()

	for _, k := range keys {
		_ = v.BindEnv(k) // Only fails without arguments.
	}

	err = v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
