// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Cloud-scan/cloudscan-ui/model"
)

var (
	ErrMalformedEvent = errors.New("malformed realtime event")
	ErrWrongEventType = errors.New("event payload does not match the requested type")
)

// EventType is the kind of an inbound event.
type EventType string

const (
	EventLog      EventType = "log"
	EventProgress EventType = "progress"
	EventStatus   EventType = "status"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventLog, EventProgress, EventStatus:
		return true
	}
	return false
}

// Event is a message pushed by the realtime server for one scan.
type Event struct {
	Type      EventType       `json:"type"`
	ScanID    string          `json:"scanId"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Handler receives the events of the scans it was subscribed to. Handlers
// are called one at a time from the client's read loop and must not block.
type Handler func(Event)

type controlType string

const (
	controlSubscribe   controlType = "subscribe"
	controlUnsubscribe controlType = "unsubscribe"
)

// controlMessage is sent to the server to start or stop the event feed of a
// scan.
type controlMessage struct {
	Type   controlType `json:"type"`
	ScanID string      `json:"scanId"`
}

// ParseEvent decodes an inbound payload. Payloads that are not JSON, carry
// an unknown type or no scan ID are rejected with ErrMalformedEvent.
func ParseEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrMalformedEvent, err.Error())
	}
	if !e.Type.Valid() {
		return Event{}, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, e.Type)
	}
	if e.ScanID == "" {
		return Event{}, fmt.Errorf("%w: missing scanId", ErrMalformedEvent)
	}
	return e, nil
}

// Log decodes the payload of a log event.
func (e Event) Log() (model.ScanLog, error) {
	var l model.ScanLog
	return l, e.decode(EventLog, &l)
}

// Progress decodes the payload of a progress event.
func (e Event) Progress() (model.ScanProgress, error) {
	var p model.ScanProgress
	err := e.decode(EventProgress, &p)
	if err == nil && p.ScanID == "" {
		p.ScanID = e.ScanID
	}
	return p, err
}

// Status decodes the payload of a status event.
func (e Event) Status() (model.ScanStatusUpdate, error) {
	var s model.ScanStatusUpdate
	return s, e.decode(EventStatus, &s)
}

func (e Event) decode(expected EventType, v any) error {
	if e.Type != expected {
		return fmt.Errorf("%w: have %s, want %s", ErrWrongEventType, e.Type, expected)
	}
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedEvent, err.Error())
	}
	return nil
}
