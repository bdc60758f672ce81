// Package setting models the flat key-value site configuration store.
package setting

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("setting not found")

const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeJSON    = "json"
)

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Type      string    `json:"type"`
	Category  string    `json:"category,omitempty"`
	Public    bool      `json:"public"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ValidType(t string) bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeJSON:
		return true
	default:
		return false
	}
}

type UpsertRequest struct {
	Value    string `json:"value" binding:"required"`
	Type     string `json:"type" binding:"omitempty,oneof=string number boolean json"`
	Category string `json:"category" binding:"omitempty,max=100"`
	Public   bool   `json:"public"`
}

// Normalize fills the defaults an upsert leaves open.
func (r *UpsertRequest) Normalize() {
	if r.Type == "" {
		r.Type = TypeString
	}
}
