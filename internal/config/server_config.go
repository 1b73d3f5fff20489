package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

func (config ServerConfig) bindEnvironmentVariables() error {
	var errs []error

	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.metrics_addr", ":8080")

	if err := viper.BindEnv("server.port", "PORT"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("server.metrics_addr", "METRICS_ADDR"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
