package server

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info" or "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
// that is returned with the query response
type WebLogger struct {
	scene       string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for the query run of one scene
func NewWebLogger(scene string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		scene:       scene,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	wl.send("info", fmt.Sprintf(format, args...))
}

// Errorf implements core.ErrorLogger interface
func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	wl.send("error", fmt.Sprintf(format, args...))
}

func (wl *WebLogger) send(level, message string) {
	// Also write to the server log
	log.Printf("[%s] %s", wl.scene, strings.TrimSuffix(message, "\n"))

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     level,
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}
