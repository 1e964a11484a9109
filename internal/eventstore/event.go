// Package eventstore is the optional build ledger: an append-only SQLite
// log of what each build rendered, skipped and how it ended.
package eventstore

import "time"

// Event types written by the build orchestrator.
const (
	TypeBuildStarted   = "BuildStarted"
	TypePageRendered   = "PageRendered"
	TypeTopicSkipped   = "TopicSkipped"
	TypeBuildCompleted = "BuildCompleted"
	TypeBuildFailed    = "BuildFailed"
)

// Event is one ledger entry.
type Event interface {
	ID() int64
	BuildID() string
	Type() string
	Timestamp() time.Time
	Payload() []byte
	Metadata() map[string]string
}

// BaseEvent provides a default implementation of Event.
type BaseEvent struct {
	EventID        int64             `json:"-"`
	EventBuildID   string            `json:"-"`
	EventType      string            `json:"-"`
	EventTimestamp time.Time         `json:"-"`
	EventPayload   []byte            `json:"-"`
	EventMetadata  map[string]string `json:"-"`
}

func (e *BaseEvent) ID() int64                   { return e.EventID }
func (e *BaseEvent) BuildID() string             { return e.EventBuildID }
func (e *BaseEvent) Type() string                { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time        { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte             { return e.EventPayload }
func (e *BaseEvent) Metadata() map[string]string { return e.EventMetadata }
