// Package logging configures the process-wide standard logger. All packages
// log through stdlib log with level tags ([INFO], [WARN], [ERR]) and an
// optional component tag, e.g. [Player].
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup directs log output to stderr, and additionally to a size-rotated
// file when logFile is non-empty.
func Setup(logFile string) {
	log.SetFlags(log.LstdFlags)

	if logFile == "" {
		log.SetOutput(os.Stderr)
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotated))
}
