package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

// Load reads dotEnvFile when it exists, then parses the MAILMERGE_ environment variables.
// Variables already set in the environment win over the file.
func Load(dotEnvFile string) (*Config, error) {
	if dotEnvFile != "" {
		err := godotenv.Load(dotEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error read env file %s: %w", dotEnvFile, err)
		}
	}

	cfg := &Config{}
	err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("error parse environment: %w", err)
	}

	err = validator.Validate(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Setup builds the zap logger used by the whole run, writing to w.
func Setup(cfg *Config, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("error parse log level: %w", err)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		MessageKey:     "msg",
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
		LevelKey:       "level",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
	}

	var encoder zapcore.Encoder
	switch cfg.Log.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	if w == nil {
		w = os.Stderr
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core), nil
}
