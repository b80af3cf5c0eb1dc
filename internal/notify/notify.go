// Package notify defines the outbound alert channel abstraction. Adapters
// deliver restocking digests and stock alerts to a chat platform; the digest
// builder decides what is worth sending.
package notify

import "context"

// Severity levels for outbound events. Adapters map these to platform
// colors.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Field is a name/value pair rendered inside an Event.
type Field struct {
	Name  string
	Value string
	Short bool // render side-by-side where the platform supports it
}

// Event is a formatted notification ready for delivery.
type Event struct {
	Title    string
	Body     string
	Severity string
	Fields   []Field
}

// Adapter is a platform-specific delivery channel (Slack, Discord).
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Connect prepares the adapter for sending (auth checks, sessions).
	Connect(ctx context.Context) error

	// Send delivers one event to the configured channel.
	Send(ctx context.Context, evt Event) error

	// Close releases the adapter. A closed adapter cannot reconnect.
	Close() error
}
