package xlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yola1107/yut/internal/conf"
)

var _ log.Logger = (*Logger)(nil)

const timeFormat = "2006/01/02 15:04:05.000"

var (
	levelColors = map[zapcore.Level]string{
		zapcore.DebugLevel:  "\x1b[36m",
		zapcore.InfoLevel:   "\x1b[32m",
		zapcore.WarnLevel:   "\x1b[33m",
		zapcore.ErrorLevel:  "\x1b[31m",
		zapcore.DPanicLevel: "\x1b[35m",
		zapcore.PanicLevel:  "\x1b[35m",
		zapcore.FatalLevel:  "\x1b[35m",
	}

	levelNames = map[zapcore.Level]string{
		zapcore.DebugLevel:  "DEBUG",
		zapcore.InfoLevel:   "INFO·",
		zapcore.WarnLevel:   "WARN·",
		zapcore.ErrorLevel:  "ERROR",
		zapcore.DPanicLevel: "PANIC",
		zapcore.PanicLevel:  "PANIC",
		zapcore.FatalLevel:  "FATAL",
	}
)

// Logger kratos log.Logger 的 zap 实现
type Logger struct {
	log   *zap.Logger
	level zap.AtomicLevel
	files []*lumberjack.Logger
}

// NewLogger dev 模式只输出控制台, prod 模式额外写滚动文件
func NewLogger(c *conf.Log) (*Logger, error) {
	if c == nil {
		c = conf.DefaultConfig().Log
	}
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", c.Level)
	}

	l := &Logger{level: level}
	cores := []zapcore.Core{newConsoleCore(level)}
	if c.Mode == conf.ModeProd && c.Directory != "" {
		cores = append(cores, l.newFileCores(c)...)
	}

	l.log = zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(3),
		zap.AddStacktrace(zap.PanicLevel),
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, 2000, 10)
		}),
	)
	return l, nil
}

func (l *Logger) Log(level log.Level, keyvals ...any) error {
	zl := zapcore.Level(level)
	if zl < zapcore.DPanicLevel && !l.log.Core().Enabled(zl) {
		return nil
	}

	keylen := len(keyvals)
	if keylen == 0 || keylen%2 != 0 {
		l.log.Warn(fmt.Sprint("Keyvalues must appear in pairs: ", keyvals))
		return nil
	}

	msg := ""
	fields := make([]zap.Field, 0, keylen/2)
	for i := 0; i < keylen; i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyvals[i])
		}
		if key == log.DefaultMessageKey {
			msg, _ = keyvals[i+1].(string)
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case log.LevelDebug:
		l.log.Debug(msg, fields...)
	case log.LevelInfo:
		l.log.Info(msg, fields...)
	case log.LevelWarn:
		l.log.Warn(msg, fields...)
	case log.LevelError:
		l.log.Error(msg, fields...)
	case log.LevelFatal:
		l.log.Fatal(msg, fields...)
	}
	return nil
}

func (l *Logger) Zap() *zap.Logger { return l.log }
func (l *Logger) GetLevel() string { return l.level.String() }

// SetLevel 运行时修改日志级别
func (l *Logger) SetLevel(level string) {
	if err := l.level.UnmarshalText([]byte(level)); err != nil {
		l.log.Info("invalid log level", zap.String("level", level), zap.Error(err))
		return
	}
	l.log.Info("log level updated", zap.String("level", level))
}

func (l *Logger) Close() error {
	_ = l.log.Sync()
	for _, f := range l.files {
		_ = f.Close()
	}
	return nil
}

func newConsoleCore(level zapcore.LevelEnabler) zapcore.Core {
	encoder := zapcore.NewConsoleEncoder(newEncoderConfig(false))
	return zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
}

func (l *Logger) newFileCores(c *conf.Log) []zapcore.Core {
	app := c.AppName
	if app == "" {
		app = "app"
	}
	rotate := c.Rotate
	if rotate == nil {
		rotate = conf.DefaultConfig().Log.Rotate
	}

	fileCore := func(filename string, minLevel zapcore.LevelEnabler) zapcore.Core {
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(c.Directory, filename),
			MaxSize:    rotate.MaxSizeMB,
			MaxBackups: rotate.MaxBackups,
			MaxAge:     rotate.MaxAgeDays,
			Compress:   rotate.Compress,
			LocalTime:  rotate.LocalTime,
		}
		l.files = append(l.files, writer)

		encoder := zapcore.NewConsoleEncoder(newEncoderConfig(true))
		if c.FormatJson {
			encoder = zapcore.NewJSONEncoder(newEncoderConfig(true))
		}
		return zapcore.NewCore(encoder, zapcore.AddSync(writer), minLevel)
	}

	cores := []zapcore.Core{fileCore(app+".log", l.level)}
	if c.ErrorFile {
		cores = append(cores, fileCore(app+"_error.log", zap.ErrorLevel))
	}
	return cores
}

func newEncoderConfig(file bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = timeEncoder
	cfg.EncodeLevel = levelEncoder
	cfg.EncodeCaller = callerEncoder
	cfg.ConsoleSeparator = " "

	if !file {
		cfg.EncodeLevel = colorLevelEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
	}
	return cfg
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("[%s]", t.Format(timeFormat)))
}

func callerEncoder(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("[%s]", c.TrimmedPath()))
}

func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("[%s]", levelNames[l]))
}

func colorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("[%s%s\x1b[0m]", levelColors[l], levelNames[l]))
}
