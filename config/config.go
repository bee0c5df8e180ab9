package config

type Configuration struct {
	App       App             `mapstructure:"APP" json:"app" yaml:"app"`
	Redis     Redis           `mapstructure:"REDIS" json:"redis" yaml:"redis"`
	RateLimit RateLimit       `mapstructure:"RATE_LIMIT" json:"rate_limit" yaml:"rate_limit"`
	Log       Log             `mapstructure:"LOG" json:"log" yaml:"log"`
	MongoDB   MongoDB         `mapstructure:"MONGODB" json:"mongodb" yaml:"mongodb"`
	Telemetry TelemetryConfig `mapstructure:"TELEMETRY" yaml:"telemetry"`
	Fluentd   Fluentd         `mapstructure:"FLUENTD" yaml:"fluentd"`
	Cron      Cron            `mapstructure:"CRON" json:"cron" yaml:"cron"`
}

// ApplyDefaults 補上未設定的必要值
func (c *Configuration) ApplyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.MongoDB.URI == "" {
		c.MongoDB.URI = "mongodb://localhost:27017"
	}
	if c.MongoDB.Database == "" {
		c.MongoDB.Database = "edulift"
	}
	if c.MongoDB.TimeoutSeconds <= 0 {
		c.MongoDB.TimeoutSeconds = 10
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = 60
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Cron.UserStatsSpec == "" {
		c.Cron.UserStatsSpec = "0 */5 * * * *"
	}
}
