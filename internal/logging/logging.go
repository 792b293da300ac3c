// Package logging builds the process logger: console output plus an optional rotating JSON file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultThresholdKB = 10 * 1024
	defaultMaxRolls    = 8
)

type Options struct {
	Level string
	JSON  bool
	// File enables the rotating log file when set.
	File        string
	ThresholdKB int64
	MaxRolls    int
}

// New returns the logger and a function that flushes it and closes the log file.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(opts.Level); err != nil {
			return nil, nil, fmt.Errorf("parse log level: %w", err)
		}
	}

	var console zapcore.Encoder
	if opts.JSON {
		console = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		console = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	cores := []zapcore.Core{zapcore.NewCore(console, zapcore.Lock(os.Stderr), level)}

	var file *rotator.Rotator
	if opts.File != "" {
		var err error
		if file, err = openRotator(opts); err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.Lock(zapcore.AddSync(file)),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	closeFn := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, closeFn, nil
}

func openRotator(opts Options) (*rotator.Rotator, error) {
	if dir := filepath.Dir(opts.File); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	threshold := opts.ThresholdKB
	if threshold <= 0 {
		threshold = defaultThresholdKB
	}
	maxRolls := opts.MaxRolls
	if maxRolls <= 0 {
		maxRolls = defaultMaxRolls
	}
	r, err := rotator.New(opts.File, threshold, false, maxRolls)
	if err != nil {
		return nil, fmt.Errorf("create log rotator: %w", err)
	}
	return r, nil
}
