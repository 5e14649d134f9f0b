package logger

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotationWriter 根据轮换方式创建文件 writer，未知方式按大小轮换
func NewRotationWriter(cfg *RotationConfig, outputPath string) (io.Writer, error) {
	if outputPath == "" {
		return nil, ErrInvalidOutputPath
	}
	if cfg.Type == RotationByTime {
		return newTimeRotationWriter(cfg, outputPath)
	}
	return &lumberjack.Logger{
		Filename:   outputPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}, nil
}

func newTimeRotationWriter(cfg *RotationConfig, outputPath string) (io.Writer, error) {
	every, err := time.ParseDuration(cfg.RotationTime)
	if err != nil || every <= 0 {
		every = 24 * time.Hour
	}
	keep, err := time.ParseDuration(cfg.MaxAgeTime)
	if err != nil || keep <= 0 {
		keep = 7 * 24 * time.Hour
	}
	pattern := cfg.RotationPattern
	if pattern == "" {
		pattern = ".%Y%m%d%H"
	}

	w, err := rotatelogs.New(
		outputPath+pattern,
		rotatelogs.WithLinkName(outputPath),
		rotatelogs.WithRotationTime(every),
		rotatelogs.WithMaxAge(keep),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "logger: rotatelogs %s", outputPath)
	}
	return w, nil
}
