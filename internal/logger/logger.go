package logger

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wfunc/ggst-notebot/internal/config"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *zap.Logger
	once   sync.Once
	mu     sync.RWMutex
	
	// 模块日志器
	moduleLoggers map[string]*zap.Logger

	// 全局日志级别，支持运行时调整
	atomicLevel = zap.NewAtomicLevel()
)

// Init 初始化日志系统
func Init(cfg *config.LogConfig) error {
	var err error
	once.Do(func() {
		moduleLoggers = make(map[string]*zap.Logger)
		atomicLevel.SetLevel(parseLevel(cfg.Level))

		encoder := newEncoder(cfg.Format)

		var cores []zapcore.Core
		if cfg.Output == "stdout" || cfg.Output == "both" {
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), atomicLevel))
		}
		if cfg.Output == "file" || cfg.Output == "both" {
			if err = os.MkdirAll(cfg.File.Path, 0755); err != nil {
				return
			}
			// 错误日志单独再写一份
			cores = append(cores,
				zapcore.NewCore(encoder, rotatingWriter(cfg.File, cfg.File.Filename), atomicLevel),
				zapcore.NewCore(encoder, rotatingWriter(cfg.File, "error.log"), zapcore.ErrorLevel),
			)
		}

		logger = zap.New(
			zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)

		// 模块级别只能比全局更严格，共享同一组输出
		for module, levelStr := range cfg.Modules {
			moduleLevel := parseLevel(levelStr)
			moduleLoggers[module] = logger.Named(module).WithOptions(
				zap.IncreaseLevel(moduleLevel),
			)
		}
	})

	return err
}

func newEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "module",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// rotatingWriter 按大小轮转的日志文件
func rotatingWriter(cfg config.LogFileConfig, filename string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.Path, filename),
		MaxSize:    cfg.MaxSize, // MB
		MaxAge:     cfg.MaxAge,  // days
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
}

// parseLevel 解析日志级别
func parseLevel(levelStr string) zapcore.Level {
	var level zapcore.Level
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	case "fatal":
		level = zapcore.FatalLevel
	default:
		level = zapcore.InfoLevel
	}
	return level
}

// GetLogger 获取日志器
func GetLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		// 如果未初始化，使用默认配置
		defaultLogger, _ := zap.NewProduction()
		return defaultLogger
	}
	return logger
}

// Sync 同步日志缓冲区
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	
	if logger != nil {
		return logger.Sync()
	}
	return nil
}

// wrapped 供包级便捷方法使用，调用位置跳过一层
func wrapped() *zap.Logger {
	return GetLogger().WithOptions(zap.AddCallerSkip(1))
}

// Debug 输出调试日志
func Debug(msg string, fields ...zap.Field) {
	wrapped().Debug(msg, fields...)
}

// Info 输出信息日志
func Info(msg string, fields ...zap.Field) {
	wrapped().Info(msg, fields...)
}

// Warn 输出警告日志
func Warn(msg string, fields ...zap.Field) {
	wrapped().Warn(msg, fields...)
}

// Error 输出错误日志
func Error(msg string, fields ...zap.Field) {
	wrapped().Error(msg, fields...)
}

// Fatal 输出致命错误日志并退出程序
func Fatal(msg string, fields ...zap.Field) {
	wrapped().Fatal(msg, fields...)
}

// WithModule 获取模块日志器，模块未注册时返回默认日志器
func WithModule(module string) *zap.Logger {
	mu.RLock()
	moduleLogger, ok := moduleLoggers[module]
	mu.RUnlock()
	if ok {
		return moduleLogger
	}
	return GetLogger()
}

// LogRequest 记录请求日志
func LogRequest(method, path string, statusCode int, latency time.Duration, clientIP string) {
	wrapped().Info("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", statusCode),
		zap.Duration("latency", latency),
		zap.String("client_ip", clientIP),
	)
}

// LogPanic 记录panic日志
func LogPanic(recovered interface{}, stack []byte) {
	wrapped().Error("panic recovered",
		zap.Any("panic", recovered),
		zap.ByteString("stack", stack),
	)
}

// LogCommand 记录斜杠命令执行
func LogCommand(command, userID, correlationID string, latency time.Duration, err error) {
	logger := WithModule("bot").WithOptions(zap.AddCallerSkip(1))
	fields := []zap.Field{
		zap.String("command", command),
		zap.String("user_id", userID),
		zap.String("correlation_id", correlationID),
		zap.Duration("latency", latency),
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && !errors.IsValidation(err) {
			fields = append(fields, zap.String("origin", appErr.GetStack()))
		}
		logger.Error("command_failed", fields...)
	} else {
		logger.Info("command", fields...)
	}
}

// LogBackupEvent 记录备份事件
func LogBackupEvent(event string, backupID uint, data map[string]interface{}) {
	WithModule("backup").Info("backup_event",
		zap.String("event", event),
		zap.Uint("backup_id", backupID),
		zap.Any("data", data),
	)
}

// SetLevel 动态设置日志级别
func SetLevel(levelStr string) {
	atomicLevel.SetLevel(parseLevel(levelStr))
}
