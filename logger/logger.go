package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

type CustomLogger struct {
	*log.Logger
}

var logLevelMapping = map[string]logrus.Level{
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"error": logrus.ErrorLevel,
}

func (l *CustomLogger) LogDebug(event_name string, message string) {
	l.WithFields(log.Fields{
		"event": event_name,
	}).Debug(message)
}

func (l *CustomLogger) LogInfo(event_name string, message string) {
	l.WithFields(log.Fields{
		"event": event_name,
	}).Info(message)
}

func (l *CustomLogger) LogError(event_name string, message string) {
	l.WithFields(log.Fields{
		"event": event_name,
	}).Error(message)
}

func (l *CustomLogger) LogWarn(event_name string, message string) {
	l.WithFields(log.Fields{
		"event": event_name,
	}).Warn(message)
}

// CreateCustomLogger creates a JSON logger writing to the provided log file.
// Loggers are passed explicitly to the components that need them, there is
// no package-global logging sink.
func CreateCustomLogger(logFilePath, logLevel string) (*CustomLogger, error) {
	logger := log.New()

	logger.SetFormatter(&log.JSONFormatter{})
	logger.SetLevel(logLevelMapping[logLevel])

	logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0755)
	if err != nil {
		return &CustomLogger{}, fmt.Errorf("Could not set log output - %v", err)
	}

	logger.SetOutput(logFile)

	return &CustomLogger{Logger: logger}, nil
}

// CreateWriterLogger logs to an arbitrary writer, used for tests and for
// logging to stdout before the config is loaded.
func CreateWriterLogger(out io.Writer, logLevel string) *CustomLogger {
	logger := log.New()

	logger.SetFormatter(&log.JSONFormatter{})
	logger.SetLevel(logLevelMapping[logLevel])
	logger.SetOutput(out)

	return &CustomLogger{Logger: logger}
}
