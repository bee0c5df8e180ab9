package log

import (
	"io"
	"os"
	"strings"

	"edulift/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// level 全域門檻，設定檔熱更新時透過 SetLevel 調整
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func NewLogger(conf *config.Configuration) (*zap.Logger, error) {
	return newLogger(conf, os.Stdout, os.Stderr), nil
}

// newLogger warn 以下寫 out，warn 以上寫 errOut
func newLogger(conf *config.Configuration, out, errOut io.Writer) *zap.Logger {
	parsed, known := ParseLevel(conf.Log.Level)
	level.SetLevel(parsed)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = "message"
	encCfg.TimeKey = "ts"
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	below := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return level.Enabled(l) && l < zapcore.WarnLevel })
	above := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return level.Enabled(l) && l >= zapcore.WarnLevel })

	logger := zap.New(
		zapcore.NewTee(
			zapcore.NewCore(encoder, zapcore.AddSync(out), below),
			zapcore.NewCore(encoder, zapcore.AddSync(errOut), above),
		),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("service", conf.App.ServiceName()),
			zap.String("version", conf.App.Version),
			zap.String("env", conf.App.Env),
		),
	)

	if !known {
		logger.Warn("unknown log level, fallback to info", zap.String("level", conf.Log.Level))
	}
	logger.Info("zap logger ready", zap.Stringer("level", level.Level()))
	return logger
}

// ParseLevel 空字串或不認得的值回傳 info, false
func ParseLevel(raw string) (zapcore.Level, bool) {
	if strings.TrimSpace(raw) == "" {
		return zapcore.InfoLevel, true
	}
	parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return zapcore.InfoLevel, false
	}
	return parsed, true
}

// SetLevel 不認得的值不做變更
func SetLevel(raw string) bool {
	parsed, ok := ParseLevel(raw)
	if ok {
		level.SetLevel(parsed)
	}
	return ok
}

func CurrentLevel() zapcore.Level {
	return level.Level()
}
