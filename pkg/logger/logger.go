package logger

import (
	"os"
	"time"

	"sigflow/conf"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 基于 zap 的全局日志，支持文件滚动与控制台双写

var (
	log   *zap.Logger
	sugar *zap.SugaredLogger
)

func init() {
	// 未调用 InitLogger 之前（例如单元测试）退化为标准输出
	log, _ = zap.NewDevelopment()
	sugar = log.Sugar()
}

func InitLogger(cfg *conf.LogConfig, appName string) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := make([]zapcore.Core, 0, 2)

	if cfg.FileName != "" {
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FileName,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileSink, level))
	}

	if cfg.Console || cfg.FileName == "" {
		consoleEnc := zap.NewDevelopmentEncoderConfig()
		consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.AddSync(os.Stdout), level))
	}

	log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).
		Named(appName)
	sugar = log.Sugar()
}

// Pair 组装一个结构化字段
func Pair(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

func Debugf(format string, args ...interface{}) { sugar.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { sugar.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { sugar.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { sugar.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { sugar.Fatalf(format, args...) }

// Sync 刷新缓冲，进程退出前调用
func Sync() {
	_ = log.Sync()
}
