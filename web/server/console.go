package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-shadowcaster/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	renderID    string
	log         zerolog.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, log zerolog.Logger, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		log:         log,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	wl.log.Info().Str("render", wl.renderID).Msg(message)

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// drainConsole collects every message already queued on ch
func drainConsole(ch chan ConsoleMessage) []ConsoleMessage {
	messages := []ConsoleMessage{}
	for {
		select {
		case msg := <-ch:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
}
