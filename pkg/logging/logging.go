package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger
var once sync.Once

// GetLogger возвращает общий logrus-логгер (файл + stdout)
func GetLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetReportCaller(true)
		logger.Formatter = &logrus.TextFormatter{
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := path.Base(f.File)
				return fmt.Sprintf("%s()", f.Function), fmt.Sprintf("%s:%d", filename, f.Line)
			},
			FullTimestamp: true,
		}

		err := os.MkdirAll("logs", 0770)
		if err != nil {
			fmt.Println(err)
		}

		file, err := os.OpenFile("logs/all.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			fmt.Println(err)
			logger.SetOutput(os.Stdout)
		} else {
			logger.SetOutput(io.MultiWriter(file, os.Stdout))
		}

		logger.SetLevel(logrus.InfoLevel)
	})

	return logger
}

// SetDebug включает уровень Debug (LOG.Debug=1 в config.ini)
func SetDebug(debug bool) {
	l := GetLogger()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
}
