package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// RetryConfig tunes one provider's retry policy. Zero values keep the
// fetcher defaults.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"maxAttempts"`
	BaseBackoff time.Duration `mapstructure:"baseBackoff"`
	MaxBackoff  time.Duration `mapstructure:"maxBackoff"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		ExternalAPI struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"externalAPI"`
		Pprof struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		}
		Prometheus struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		}
	} `mapstructure:"handlers"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	LLM struct {
		Provider    string  `mapstructure:"provider"`
		Model       string  `mapstructure:"model"`
		Temperature float32 `mapstructure:"temperature"`
		MaxTokens   int     `mapstructure:"maxTokens"`
	} `mapstructure:"llm"`
	Providers struct {
		Amadeus struct {
			// MinInterval spaces requests to the inventory APIs so the
			// free-tier rate limit is not tripped by concurrent searches.
			MinInterval time.Duration `mapstructure:"minInterval"`
			Retry       RetryConfig   `mapstructure:"retry"`
		} `mapstructure:"amadeus"`
		LLM struct {
			MinInterval time.Duration `mapstructure:"minInterval"`
			Retry       RetryConfig   `mapstructure:"retry"`
		} `mapstructure:"llm"`
	} `mapstructure:"providers"`
	Budget struct {
		// SoftDeadline is informational: aggregations running past it are
		// logged, not aborted. HardTimeout bounds the whole request.
		SoftDeadline time.Duration `mapstructure:"softDeadline"`
		HardTimeout  time.Duration `mapstructure:"hardTimeout"`
		CacheTTL     time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"budget"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
