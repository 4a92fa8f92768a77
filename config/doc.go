// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml on top of built-in defaults and
// validated using struct tags. The simulation section maps directly onto
// flow.Params. Several localities may be configured for street searches and
// one is selected by name.
package config
