// Package storage persists visitor feedback for the crime analytics service.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is one message left through the contact form.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
