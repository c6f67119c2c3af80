package logger

import (
	"net/http"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006/01/02 15:04:05"

// до вызова Init логи никуда не пишутся
var Logger = zap.NewNop()

// Options описывает вывод логов. При пустом File пишем только в stdout.
type Options struct {
	Development bool
	File        string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
}

func Init(opts Options) error {
	var config zap.Config
	if opts.Development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	l, err := config.Build()
	if err != nil {
		return err
	}

	if opts.File != "" {
		fileEncoder := zap.NewProductionEncoderConfig()
		fileEncoder.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoder),
			zapcore.AddSync(rotator),
			config.Level,
		)
		l = l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	Logger = l
	return nil
}

func Sync() {
	// ошибка sync для stdout/stderr на linux ожидаема
	if err := Logger.Sync(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			Logger.Warn("Logger: ошибка sync", zap.Error(err))
		}
	}
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Log(lvl zapcore.Level, msg string, fields ...zap.Field) {
	Logger.Log(lvl, msg, fields...)
}

func HttpRequestInfo(r *http.Request, msg string, fields ...zap.Field) {
	allFields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
		zap.String("client_ip", r.RemoteAddr),
	}
	allFields = append(allFields, fields...)
	Logger.Info(msg, allFields...)
}

func Error(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Logger.Error(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}
