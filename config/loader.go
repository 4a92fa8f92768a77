package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config = Default()

// LoadAppConfig loads and validates config.yml from the working directory
func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	var err error
	for _, p := range paths {
		var cfg AppConfig
		cfg, err = LoadFromFile(p)
		if err == nil {
			Config = cfg
			return nil
		}
		if !os.IsNotExist(err) {
			return err
		}
	}
	return err
}

// LoadFromFile reads a YAML file on top of the defaults and validates the result
func LoadFromFile(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, err
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result
func Parse(data []byte) (AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SelectLocality chooses a locality by name; fallback to the first one
func SelectLocality(name string) Locality {
	if name != "" {
		for _, l := range Config.Localities {
			if l.Name == name || l.City == name {
				return l
			}
		}
	}
	if len(Config.Localities) > 0 {
		return Config.Localities[0]
	}
	return Default().Localities[0]
}
