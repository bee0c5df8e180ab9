package config

type Cron struct {
	// 以秒為首欄位的 cron 表示式，空字串停用
	UserStatsSpec    string `mapstructure:"USER_STATS_SPEC" json:"user_stats_spec" yaml:"user_stats_spec"`
	UserStatsEnabled bool   `mapstructure:"USER_STATS_ENABLED" json:"user_stats_enabled" yaml:"user_stats_enabled"`
}
