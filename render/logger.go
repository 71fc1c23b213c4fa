package render

import (
	"io"
	"log"
)

var logger *log.Logger = log.New(io.Discard, "", log.LstdFlags)

// SetLogger sets where the renderer writes diagnostics. The default discards them.
func SetLogger(l *log.Logger) {
	logger = l
}
