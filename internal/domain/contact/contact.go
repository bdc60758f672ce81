// Package contact models public contact-form submissions.
package contact

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("contact message not found")

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=120"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"omitempty,max=200"`
	Body    string `json:"body" binding:"required,min=1,max=5000"`
}

func NewFromCreateRequest(req CreateRequest) Message {
	return Message{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
}
