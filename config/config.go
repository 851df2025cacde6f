/*
Config package
*/
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config wraps a dedicated viper instance so that every service process reads
// its own .env file and environment variables.
type Config struct {
	*viper.Viper
}

// New - read .env and ENV variables
func New() (*Config, error) {
	provider := viper.New()

	provider.SetConfigName(".env")
	provider.SetConfigType("dotenv")
	provider.AddConfigPath(".") // look for config in the working directory
	provider.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	provider.AutomaticEnv()

	if err := provider.ReadInConfig(); err != nil {
		var typeErr viper.ConfigFileNotFoundError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
	}

	return &Config{provider}, nil
}
