package config

// Config holds the station server settings. viper fills it from the
// environment or the .mobilecafe.yml file; see cmd.initConfig for the
// defaults.
type Config struct {
	BindHost      string `mapstructure:"HOST"`
	BindPort      int    `mapstructure:"PORT"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	NATSServerURL string `mapstructure:"NATS_URL"`

	// Build information, injected at link time
	BuildVersion string `mapstructure:"-"`
	BuildHash    string `mapstructure:"-"`
	BuildTime    string `mapstructure:"-"`
}
