package config

type MongoDB struct {
	URI      string `mapstructure:"URI" json:"uri" yaml:"uri"`
	Options  string `mapstructure:"OPTIONS" json:"options" yaml:"options"`
	Database string `mapstructure:"DATABASE" json:"database" yaml:"database"`
	// 連線與 index 建立逾時（秒）
	TimeoutSeconds int `mapstructure:"TIMEOUT_SECONDS" json:"timeout_seconds" yaml:"timeout_seconds"`
	// 是否對 username 建立 partial unique index
	UniqueUsername bool `mapstructure:"UNIQUE_USERNAME" json:"unique_username" yaml:"unique_username"`
}
