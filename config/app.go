package config

type App struct {
	// 當前開發環境
	Env string `mapstructure:"ENV" json:"env" yaml:"env"`
	// 服務端口
	Port uint32 `mapstructure:"PORT" json:"port" yaml:"port"`
	// 服務名稱
	Name string `mapstructure:"NAME" json:"name" yaml:"name"`
	// 服務版本
	Version        string `mapstructure:"VERSION" json:"version" yaml:"version"`
	SwaggerEnabled bool   `mapstructure:"SWAGGER_ENABLED" json:"swagger_enabled" yaml:"swagger_enabled"`
	PprofEnabled   bool   `mapstructure:"PPROF_ENABLED" json:"pprof_enabled" yaml:"pprof_enabled"`
	// 回應壓縮（gzip）
	CompressionEnabled bool `mapstructure:"COMPRESSION_ENABLED" json:"compression_enabled" yaml:"compression_enabled"`
	// CORS 允許來源，空值代表 "*"
	AllowOrigins []string `mapstructure:"ALLOW_ORIGINS" json:"allow_origins" yaml:"allow_origins"`
}

// ServiceName 給 metric / trace 使用的名稱
func (a App) ServiceName() string {
	if a.Name == "" {
		return "edulift"
	}
	return a.Name
}
