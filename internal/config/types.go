package config

// Config holds all configuration for the application.
type Config struct {
	Port         string
	CourtService CourtServiceConfig
}

// CourtServiceConfig is the remote match/booking service endpoint.
type CourtServiceConfig struct {
	BaseURL string
	Token   string
}
