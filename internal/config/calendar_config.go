package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type CalendarConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	// FallbackMeetDomain shapes synthetic links as https://meet.<domain>/<code>
	// when the real integration is absent or failing.
	FallbackMeetDomain   string        `mapstructure:"fallback_meet_domain"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
}

func (config CalendarConfig) validate() error {
	//an empty client id is allowed: every HR then simply gets fallback links
	if config.ClientID != "" && config.ClientSecret == "" {
		return fmt.Errorf("missing variable: calendar client secret")
	}
	return nil
}

func (config CalendarConfig) bindEnvironmentVariables() error {
	var errs []error

	viper.SetDefault("calendar.fallback_meet_domain", "google.com")
	viper.SetDefault("calendar.request_timeout", 15*time.Second)

	if err := viper.BindEnv("calendar.client_id", "GOOGLE_CLIENT_ID"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("calendar.client_secret", "GOOGLE_CLIENT_SECRET"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("calendar.fallback_meet_domain", "FALLBACK_MEET_DOMAIN"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
