package config

// Fluentd 請求 / 回應紀錄轉送設定，Host 為空時不連線
type Fluentd struct {
	Host      string `mapstructure:"HOST" json:"host" yaml:"host"`
	Port      int    `mapstructure:"PORT" json:"port" yaml:"port"`
	TagPrefix string `mapstructure:"TAG_PREFIX" json:"tagPrefix" yaml:"tagPrefix"`
	// 毫秒
	Timeout int64 `mapstructure:"TIMEOUT" json:"timeout" yaml:"timeout"`
	Async   bool  `mapstructure:"ASYNC" json:"async" yaml:"async"`
}

func (f Fluentd) Enabled() bool {
	return f.Host != ""
}
