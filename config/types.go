package config

import "github.com/theoremus-urban-solutions/streetflow/flow"

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// StorageConfig points at the file backing the street and signal store
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// GeocoderConfig contains the Nominatim search settings
type GeocoderConfig struct {
	URL       string `yaml:"url" validate:"required,url"`
	UserAgent string `yaml:"userAgent" validate:"required"`
	Limit     int    `yaml:"limit" validate:"gt=0,lte=50"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// Locality is a city used to scope street searches
type Locality struct {
	Name         string `yaml:"name" validate:"required"`
	City         string `yaml:"city" validate:"required"`
	Country      string `yaml:"country"`
	CountryCodes string `yaml:"countryCodes"`
}

// StreetDefaults are applied to imported streets and new lights when the caller omits them
type StreetDefaults struct {
	Lanes     int     `yaml:"lanes" validate:"gt=0"`
	Demand    float64 `yaml:"vehiclesPerHour" validate:"gte=0"`
	Speed     float64 `yaml:"averageSpeed" validate:"gte=0"`
	CycleTime float64 `yaml:"cycleTime" validate:"gt=0"`
	GreenTime float64 `yaml:"greenTime" validate:"gt=0,ltfield=CycleTime"`
	SegmentKM float64 `yaml:"segmentKM" validate:"gt=0"`
}

// TransitConfig contains the GTFS-Realtime demand overlay settings
type TransitConfig struct {
	VehiclePositionsURL string  `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	SnapMeters          float64 `yaml:"snapMeters" validate:"gt=0"`
	PCE                 float64 `yaml:"pce" validate:"gt=0"` // passenger car equivalent of one transit vehicle
	TimeoutMS           int     `yaml:"timeoutMS" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server     ServerConfig   `yaml:"server"`
	Storage    StorageConfig  `yaml:"storage"`
	Log        LogConfig      `yaml:"log"`
	Geocoder   GeocoderConfig `yaml:"geocoder"`
	Localities []Locality     `yaml:"localities" validate:"dive"`
	Defaults   StreetDefaults `yaml:"defaults"`
	Simulation flow.Params    `yaml:"simulation"`
	Transit    TransitConfig  `yaml:"transit"`
}

// Default returns the configuration used when config.yml leaves a value out
func Default() AppConfig {
	return AppConfig{
		Server:  ServerConfig{Port: 5000},
		Storage: StorageConfig{Path: "streetflow.gob"},
		Log:     LogConfig{Level: "info"},
		Geocoder: GeocoderConfig{
			URL:       "https://nominatim.openstreetmap.org/search",
			UserAgent: "StreetFlow/1.0",
			Limit:     5,
			TimeoutMS: 10000,
		},
		Localities: []Locality{
			{Name: "sao-paulo", City: "São Paulo", Country: "Brasil", CountryCodes: "br"},
		},
		Defaults: StreetDefaults{
			Lanes:     2,
			Demand:    500,
			Speed:     50,
			CycleTime: 90,
			GreenTime: 45,
			SegmentKM: 0.3,
		},
		Simulation: flow.DefaultParams(),
		Transit: TransitConfig{
			SnapMeters: 25,
			PCE:        2.0,
			TimeoutMS:  10000,
		},
	}
}
