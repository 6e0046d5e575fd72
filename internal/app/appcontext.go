package app

import (
	"time"

	"github.com/google/uuid"
)

// ProcessContext is the application context handed to native modules. It
// stands for one running host application.
type ProcessContext struct {
	id        string
	startedAt time.Time
}

// NewProcessContext creates a context with a fresh random ID.
func NewProcessContext() *ProcessContext {
	return &ProcessContext{id: uuid.NewString(), startedAt: time.Now()}
}

// ID implements resolver.AppContext.
func (c *ProcessContext) ID() string {
	return c.id
}

// StartedAt returns when the context was created.
func (c *ProcessContext) StartedAt() time.Time {
	return c.startedAt
}
