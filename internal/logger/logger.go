// Package logger provides the process-wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	level = zap.NewAtomicLevel()
	once  sync.Once
)

// Init builds the global logger for env. "production" writes JSON at info,
// "test" discards everything, anything else writes colored console output at debug.
func Init(env string) {
	once.Do(func() {
		var cfg zap.Config
		switch env {
		case "test":
			sugar = zap.NewNop().Sugar()
			return
		case "production":
			cfg = zap.NewProductionConfig()
		default:
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		level.SetLevel(cfg.Level.Level())
		cfg.Level = level

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar().Named("royalfootwear")
	})
}

// SetLevel changes the minimum level of the running logger, e.g. "warn".
func SetLevel(name string) error {
	l, err := zapcore.ParseLevel(name)
	if err != nil {
		return err
	}
	level.SetLevel(l)
	return nil
}

// Get returns the global sugared logger, initializing a development logger if needed.
func Get() *zap.SugaredLogger {
	Init("development")
	return sugar
}

// For returns the global logger tagged with a component, e.g. "cart".
func For(component string) *zap.SugaredLogger {
	return Get().With("component", component)
}

// Sync flushes buffered entries. Call before exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
