package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
	DebugLogger *logrus.Logger
)

// InitLoggers sets up the named loggers. Each logger writes to stdout and to a
// rotated file under logs/.
func InitLoggers() {
	InfoLogger = newLogger("logs/info.log", logrus.InfoLevel)
	WarnLogger = newLogger("logs/warn.log", logrus.WarnLevel)
	ErrorLogger = newLogger("logs/error.log", logrus.ErrorLevel)
	DebugLogger = newLogger("logs/debug.log", logrus.DebugLevel)

	if os.Getenv("LOG_LEVEL") == "debug" {
		DebugLogger.SetLevel(logrus.DebugLevel)
	} else {
		DebugLogger.SetLevel(logrus.InfoLevel)
	}
}

func newLogger(file string, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	l.SetOutput(io.MultiWriter(os.Stdout, rotated))
	return l
}
