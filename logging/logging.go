// Package logging provides the job-scoped stdout logger. Every line carries
// the asset id so Cloud Run log filters can follow a single conversion.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

type Logger struct {
	out     *log.Logger
	assetID string
}

func New(assetID string) *Logger {
	return NewWithWriter(os.Stdout, assetID)
}

func NewWithWriter(w io.Writer, assetID string) *Logger {
	return &Logger{
		out:     log.New(w, "", 0),
		assetID: assetID,
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.printf("INFO", format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.printf("ERROR", format, args...)
}

func (l *Logger) printf(level, format string, args ...any) {
	l.out.Printf("[%s] [%s] %s", level, l.assetID, fmt.Sprintf(format, args...))
}
