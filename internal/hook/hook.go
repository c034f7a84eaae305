package hook

import (
	"context"
	"time"
)

// Point defines when a hook is triggered
type Point string

const (
	BeforeToolExecution Point = "before_tool_execution"
	AfterToolExecution  Point = "after_tool_execution"
)

// Data carries context-specific information for hooks
type Data struct {
	Point     Point
	Timestamp time.Time
	ToolName  string
	Data      map[string]any
}

// NewData creates a new Data instance
func NewData(point Point, toolName string) *Data {
	return &Data{
		Point:     point,
		Timestamp: time.Now(),
		ToolName:  toolName,
		Data:      make(map[string]any),
	}
}

// Set sets a data field
func (d *Data) Set(key string, value any) *Data {
	d.Data[key] = value
	return d
}

// GetString retrieves a string data field
func (d *Data) GetString(key string) string {
	if v, ok := d.Data[key].(string); ok {
		return v
	}
	return ""
}

// Feedback is returned by handlers to control execution flow
type Feedback struct {
	Allow   bool
	Message string
}

// AllowFeedback creates an allow feedback
func AllowFeedback() *Feedback {
	return &Feedback{Allow: true}
}

// DenyFeedback creates a deny feedback with message
func DenyFeedback(message string) *Feedback {
	return &Feedback{Allow: false, Message: message}
}

// Handler is the interface for hook handlers
type Handler interface {
	// Name returns the handler name
	Name() string

	// Points returns which hook points this handler listens to
	Points() []Point

	// Handle processes the hook event and returns feedback
	Handle(ctx context.Context, data *Data) (*Feedback, error)

	// Priority returns the handler priority (higher = earlier execution)
	Priority() int
}
