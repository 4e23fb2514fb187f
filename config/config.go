package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"metricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT JWTConfig `mapstructure:"jwt"`
	Web struct {
		SessionKey  string   `mapstructure:"sessionKey"`
		CORSOrigins []string `mapstructure:"corsOrigins"`
	} `mapstructure:"web"`
}

type JWTConfig struct {
	SecretKey     string `mapstructure:"secretKey"`
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
	ExpireMinutes int    `mapstructure:"expireMinutes"`
}

// TokenTTL returns the configured token lifetime, defaulting to 60 minutes.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpireMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(j.ExpireMinutes) * time.Minute
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("EMPRESAS")
	v.AutomaticEnv()

	// Try to load file-based config, fall back to the embedded copy.
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.JWT.SecretKey == "" {
		// The token issuer cannot run without a signing key.
		return Config{}, errors.New("jwt.secretKey is not configured")
	}

	return config, nil
}
