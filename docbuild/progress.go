package docbuild

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
)

// ProgressEmitter receives build lifecycle events. Implementations
// include:
// - CLIEmitter: pretty-printed terminal output using pterm
// - JSONEmitter: structured JSON events for machine consumption
// - NopEmitter: discards everything (the default for library use)
type ProgressEmitter interface {
	// EmitStage announces entry into a named pipeline stage.
	EmitStage(stage string, message string)

	// EmitProgress reports a processed-item count with optional metadata.
	EmitProgress(count int, metadata map[string]interface{})

	// EmitComplete reports the final build summary.
	EmitComplete(summary map[string]interface{})

	// EmitError reports a fatal error in a stage.
	EmitError(stage string, err error)

	// EmitInfo reports an informational message.
	EmitInfo(message string)
}

// ProgressEvent is one structured JSON progress event.
type ProgressEvent struct {
	Type      string                 `json:"type"`      // "stage", "progress", "complete", "error", "info"
	Timestamp time.Time              `json:"timestamp"` // When this event occurred
	Data      map[string]interface{} `json:"data"`      // Event-specific data
}

// CLIEmitter outputs pretty-printed progress to terminal using pterm.
type CLIEmitter struct {
	verbosity int
}

// NewCLIEmitter creates a CLI progress emitter for terminal output.
func NewCLIEmitter(verbosity int) *CLIEmitter {
	return &CLIEmitter{verbosity: verbosity}
}

// EmitStage prints a stage announcement to terminal.
func (e *CLIEmitter) EmitStage(stage string, message string) {
	pterm.Printf("🔄 %s: %s\n", pterm.LightCyan(stage), message)
}

// EmitProgress prints a processed-item count.
func (e *CLIEmitter) EmitProgress(count int, metadata map[string]interface{}) {
	if itemType, ok := metadata["type"].(string); ok {
		pterm.Printf("✅ Processed %s %s\n", pterm.Green(fmt.Sprintf("%d", count)), itemType)
	} else {
		pterm.Printf("✅ Processed %s items\n", pterm.Green(fmt.Sprintf("%d", count)))
	}
}

// EmitComplete prints the completion summary.
func (e *CLIEmitter) EmitComplete(summary map[string]interface{}) {
	pterm.Success.Println("Build complete!")
	if e.verbosity >= 1 {
		for key, value := range summary {
			pterm.Printf("  %s: %v\n", key, value)
		}
	}
}

// EmitError prints an error.
func (e *CLIEmitter) EmitError(stage string, err error) {
	pterm.Error.Printf("Error in %s: %v\n", stage, err)
}

// EmitInfo prints an informational message.
func (e *CLIEmitter) EmitInfo(message string) {
	if e.verbosity >= 1 {
		pterm.Info.Println(message)
	}
}

// JSONEmitter outputs structured JSON events to stdout.
type JSONEmitter struct {
	encoder *json.Encoder
}

// NewJSONEmitter creates a JSON progress emitter for structured output.
func NewJSONEmitter() *JSONEmitter {
	return &JSONEmitter{
		encoder: json.NewEncoder(os.Stdout),
	}
}

// EmitStage emits a stage event as JSON.
func (e *JSONEmitter) EmitStage(stage string, message string) {
	e.encoder.Encode(ProgressEvent{
		Type:      "stage",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"stage":   stage,
			"message": message,
		},
	})
}

// EmitProgress emits a progress event as JSON.
func (e *JSONEmitter) EmitProgress(count int, metadata map[string]interface{}) {
	data := map[string]interface{}{
		"count": count,
	}
	for k, v := range metadata {
		data[k] = v
	}
	e.encoder.Encode(ProgressEvent{
		Type:      "progress",
		Timestamp: time.Now(),
		Data:      data,
	})
}

// EmitComplete emits a completion event as JSON.
func (e *JSONEmitter) EmitComplete(summary map[string]interface{}) {
	e.encoder.Encode(ProgressEvent{
		Type:      "complete",
		Timestamp: time.Now(),
		Data:      summary,
	})
}

// EmitError emits an error event as JSON.
func (e *JSONEmitter) EmitError(stage string, err error) {
	e.encoder.Encode(ProgressEvent{
		Type:      "error",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"stage": stage,
			"error": err.Error(),
		},
	})
}

// EmitInfo emits an info event as JSON.
func (e *JSONEmitter) EmitInfo(message string) {
	e.encoder.Encode(ProgressEvent{
		Type:      "info",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": message,
		},
	})
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) EmitStage(string, string)                 {}
func (NopEmitter) EmitProgress(int, map[string]interface{}) {}
func (NopEmitter) EmitComplete(map[string]interface{})      {}
func (NopEmitter) EmitError(string, error)                  {}
func (NopEmitter) EmitInfo(string)                          {}
