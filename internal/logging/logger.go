package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide structured logger. Packages log through it
// directly; InitLogger configures output and level once at startup and is
// safe to skip in tests.
var Logger = logrus.New()

var once sync.Once

func InitLogger() {
	once.Do(func() {
		Logger.SetFormatter(&logrus.JSONFormatter{})

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.InfoLevel
		}
		Logger.SetLevel(level)

		if logFile := os.Getenv("LOG_FILE"); logFile != "" {
			rotated := &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
			Logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
		}
	})
}
