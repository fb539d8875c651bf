// Package config loads application settings from an optional YAML file and
// CHARITY_-prefixed environment variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds everything needed to reach the Fabric network and serve the
// HTTP API.
type Config struct {
	ListenAddress     string        `mapstructure:"listen_address"`
	ConnectionProfile string        `mapstructure:"connection_profile"`
	WalletPath        string        `mapstructure:"wallet_path"`
	Channel           string        `mapstructure:"channel"`
	Chaincode         string        `mapstructure:"chaincode"`
	Organization      string        `mapstructure:"organization"`
	MSPID             string        `mapstructure:"msp_id"`
	CAAffiliation     string        `mapstructure:"ca_affiliation"`
	AdminLabel        string        `mapstructure:"admin_label"`
	UserLabel         string        `mapstructure:"user_label"`
	SubmitTimeout     time.Duration `mapstructure:"submit_timeout"`
	MaxSubmitAttempts int           `mapstructure:"max_submit_attempts"`
}

// Load reads configuration from path (optional; pass "" to rely on defaults
// and environment only).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_address", ":5000")
	v.SetDefault("connection_profile", "connection-profile.yaml")
	v.SetDefault("wallet_path", "wallet")
	v.SetDefault("channel", "mychannel")
	v.SetDefault("chaincode", "charity")
	v.SetDefault("organization", "Org1")
	v.SetDefault("msp_id", "Org1MSP")
	v.SetDefault("ca_affiliation", "org1.department1")
	v.SetDefault("admin_label", "admin")
	v.SetDefault("user_label", "appUser")
	v.SetDefault("submit_timeout", 30*time.Second)
	v.SetDefault("max_submit_attempts", 3)

	v.SetEnvPrefix("charity")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithMessagef(err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WithMessage(err, "failed to unmarshal config")
	}
	if cfg.MaxSubmitAttempts < 1 {
		cfg.MaxSubmitAttempts = 1
	}
	return &cfg, nil
}
