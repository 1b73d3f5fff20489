package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type EmailConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	FromAddress string        `mapstructure:"from_address"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

func (config EmailConfig) validate() error {

	var missingFields []string

	if config.APIKey == "" {
		missingFields = append(missingFields, "api_key")
	}

	if config.FromAddress == "" {
		missingFields = append(missingFields, "from_address")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	return nil
}

func (config EmailConfig) bindEnvironmentVariables() error {
	var errs []error

	viper.SetDefault("email.send_timeout", 10*time.Second)

	if err := viper.BindEnv("email.api_key", "RESEND_API_KEY"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("email.from_address", "EMAIL_FROM_ADDRESS"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
