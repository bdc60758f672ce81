// Package jobs defines the job types the worker understands and the typed
// payload codec between handlers and the jobs table.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/galleryhub/galleryhub/internal/domain/job"
)

const (
	// TypeContactNotify delivers a notification for a contact-form
	// submission. Payload is ID-based; the worker loads the message.
	TypeContactNotify = "contact.notify"
)

var (
	ErrInvalidJobType    = errors.New("invalid job type")
	ErrInvalidJobPayload = errors.New("invalid job payload")
)

func ValidType(t string) bool {
	return t == TypeContactNotify
}

type ContactNotifyPayload struct {
	MessageID string `json:"messageId"`
	RequestID string `json:"requestId,omitempty"` // correlation
}

func EncodePayload(t string, payload any) (json.RawMessage, error) {
	if !ValidType(t) {
		return nil, ErrInvalidJobType
	}

	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals j.Payload into the typed payload for its job type.
func DecodePayload(j job.Job) (any, error) {
	if !ValidType(j.Type) {
		return nil, ErrInvalidJobType
	}

	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case TypeContactNotify:
		var p ContactNotifyPayload

		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}

		if err := ValidatePayload(j.Type, p); err != nil {
			return nil, err
		}

		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}

// ValidatePayload performs minimal structural validation on a payload value.
func ValidatePayload(t string, payload any) error {
	switch t {
	case TypeContactNotify:
		var p ContactNotifyPayload

		switch v := payload.(type) {
		case ContactNotifyPayload:
			p = v
		case *ContactNotifyPayload:
			p = *v
		default:
			return ErrInvalidJobPayload
		}

		if strings.TrimSpace(p.MessageID) == "" {
			return ErrInvalidJobPayload
		}

		return nil

	default:
		return ErrInvalidJobType
	}
}
