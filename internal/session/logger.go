package session

import (
	"io"
	"log"
)

var logger *log.Logger = log.New(io.Discard, "", log.LstdFlags)

// SetLogger sets where session events such as level changes are logged
func SetLogger(l *log.Logger) {
	logger = l
}
