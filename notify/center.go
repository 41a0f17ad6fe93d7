// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package notify holds the transient notifications raised for the user.
package notify

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Cloud-scan/cloudscan-ui/apiclient"
	"github.com/google/uuid"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var ErrEmptyMessage = errors.New("notification message is required")

// DefaultDuration is how long a notification is shown when it does not set
// its own duration.
const DefaultDuration = 5 * time.Second

// Level is the kind of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

type Notification struct {
	ID      string `json:"id"`
	Level   Level  `json:"type"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`

	// Duration is how long the notification is kept. Zero means
	// DefaultDuration and a negative duration keeps it until removed.
	Duration time.Duration `json:"duration"`

	CreatedAt time.Time `json:"created_at"`
}

type expireableNotification struct {
	Notification
	expiration *time.Time
}

// Center is safe for concurrent use. Expired notifications are dropped the
// next time the center is read.
type Center struct {
	lock   sync.Mutex
	items  map[string]expireableNotification
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewCenter(logger *zap.Logger) *Center {
	if logger == nil {
		logger = sallust.Default()
	}
	return &Center{
		items:  make(map[string]expireableNotification),
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Add stores n under a new ID and returns it.
func (c *Center) Add(n Notification) (string, error) {
	if strings.TrimSpace(n.Message) == "" {
		return "", ErrEmptyMessage
	}
	if n.Level == "" {
		n.Level = LevelInfo
	}
	if n.Duration == 0 {
		n.Duration = DefaultDuration
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	n.ID = c.newID()
	n.CreatedAt = c.now()
	item := expireableNotification{Notification: n}
	if n.Duration > 0 {
		expiration := n.CreatedAt.Add(n.Duration)
		item.expiration = &expiration
	}
	c.items[n.ID] = item
	c.logger.Debug("notification added", zap.String("id", n.ID), zap.String("level", string(n.Level)))
	return n.ID, nil
}

// Remove dismisses a notification. It returns false when no live
// notification has the ID.
func (c *Center) Remove(id string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	item, ok := c.items[id]
	if !ok {
		return false
	}
	delete(c.items, id)
	return !c.hasExpired(item)
}

// List returns the live notifications, oldest first.
func (c *Center) List() []Notification {
	c.lock.Lock()
	defer c.lock.Unlock()
	result := make([]Notification, 0, len(c.items))
	for id, item := range c.items {
		if c.hasExpired(item) {
			delete(c.items, id)
			continue
		}
		result = append(result, item.Notification)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (c *Center) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.items = make(map[string]expireableNotification)
}

// FromError raises the notification matching a failed request. Rate limits
// are warnings, validation failures list the offending fields and anything
// else is an error.
func (c *Center) FromError(title string, err error) (string, error) {
	if err == nil {
		return "", nil
	}
	n := Notification{Level: LevelError, Title: title, Message: err.Error()}

	apiErr, ok := apiclient.AsAPIError(err)
	switch {
	case ok && errors.Is(err, apiclient.ErrRateLimited):
		n.Level = LevelWarning
		n.Message = apiErr.Message
	case ok && errors.Is(err, apiclient.ErrValidation):
		n.Message = validationMessage(apiErr)
	case ok:
		n.Message = apiErr.Message
	}
	return c.Add(n)
}

func validationMessage(err *apiclient.APIError) string {
	if len(err.Details) == 0 {
		return err.Message
	}
	fields := make([]string, 0, len(err.Details))
	for field := range err.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(err.Message)
	for _, field := range fields {
		b.WriteString("\n")
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(strings.Join(err.Details[field], ", "))
	}
	return b.String()
}

func (c *Center) hasExpired(item expireableNotification) bool {
	return item.expiration != nil && !c.now().Before(*item.expiration)
}
