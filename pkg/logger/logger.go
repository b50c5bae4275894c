// Пакет logger настраивает logrus для сервисов каталога
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New создаёт логгер с уровнем level и форматом format ("json" или "text").
// Неизвестный уровень заменяется на info
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
