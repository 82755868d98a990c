package xlog

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileTimeFormat    = "2006/01/02 15:04:05"
	defaultMaxSize    = 10 // 10 MB
	defaultMaxAge     = 7  // 7 days
	defaultMaxBackups = 3  // 3 back
)

// FileLog 单个文件的日志, 用于对局记录
type FileLog struct {
	logger *zap.Logger
	writer *lumberjack.Logger
}

func NewFileLog(filename string) *FileLog {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeLevel = nil
	encoderCfg.EncodeTime = fileTimeEncoder
	encoderCfg.ConsoleSeparator = " "
	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    defaultMaxSize,
		MaxAge:     defaultMaxAge,
		MaxBackups: defaultMaxBackups,
		LocalTime:  true,
		Compress:   true,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(lj), zapcore.InfoLevel)
	return &FileLog{logger: zap.New(core), writer: lj}
}

func fileTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(fileTimeFormat) + "]")
}

// Write 写一行
func (l *FileLog) Write(msg string, args ...any) {
	l.logger.Sugar().Infof(msg, args...)
}

// Infow 结构化写入
func (l *FileLog) Infow(msg string, kvs ...any) {
	l.logger.Sugar().Infow(msg, kvs...)
}

func (l *FileLog) Close() error {
	_ = l.logger.Sync()
	return l.writer.Close()
}
