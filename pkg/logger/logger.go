package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с настройками logrus по умолчанию.
var Log = logrus.New()

// Init инициализирует глобальный логгер.
// Эта функция должна быть вызвана один раз при старте приложения в main.go.
func Init() {
	Log = logrus.New()

	// 1. Уровень и формат из переменных окружения.
	// По умолчанию - "info" и "text".
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	Configure(logLevel, os.Getenv("LOG_FORMAT"))

	// 2. Устанавливаем, куда писать логи (в стандартный вывод).
	Log.SetOutput(os.Stdout)
}

// Configure меняет уровень и формат уже созданного логгера.
// Неизвестный уровень превращается в info.
// "json" - для продакшена и сбора логов, всё остальное - текст для разработки.
func Configure(level, format string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)

	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}
