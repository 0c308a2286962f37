package utils

import (
	"github.com/blagojts/viper"
)

// SetupConfigFile reads the configuration file into v. An explicit path
// must exist; with no path, ./config.yaml is read if present. The name of
// the file that was read is returned, or "" if none was.
func SetupConfigFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Ignore error if the default config file is not found.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return "", nil
		}
		return "", err
	}

	return v.ConfigFileUsed(), nil
}
