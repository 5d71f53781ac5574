package logging

import (
	"os"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger

// Init builds the process logger. APP_ENV=production switches to the
// JSON production config; anything else gets the development console.
func Init() *zap.SugaredLogger {
	var l *zap.Logger
	var err error
	if os.Getenv("APP_ENV") == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		// zap failed before we have a logger; nothing better to do
		panic(err)
	}
	log = l.Sugar()
	return log
}

// L returns the process logger, initializing a development one on first
// use so tests and helpers never get a nil logger.
func L() *zap.SugaredLogger {
	if log == nil {
		return Init()
	}
	return log
}
