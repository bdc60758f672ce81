package jobs

import (
	"errors"
	"testing"

	"github.com/galleryhub/galleryhub/internal/domain/job"
)

func TestEncodeDecodeContactNotify(t *testing.T) {
	raw, err := EncodePayload(TypeContactNotify, ContactNotifyPayload{
		MessageID: "msg-123",
		RequestID: "req-1",
	})

	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	j := job.New(job.CreateRequest{Type: TypeContactNotify, Payload: raw})

	decoded, err := DecodePayload(j)

	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	p, ok := decoded.(ContactNotifyPayload)

	if !ok {
		t.Fatalf("decoded to %T, want ContactNotifyPayload", decoded)
	}

	if p.MessageID != "msg-123" || p.RequestID != "req-1" {
		t.Fatalf("round trip mismatch: %+v", p)
	}
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	_, err := EncodePayload("bogus.type", ContactNotifyPayload{MessageID: "x"})

	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("err = %v, want ErrInvalidJobType", err)
	}
}

func TestEncodeRejectsEmptyMessageID(t *testing.T) {
	_, err := EncodePayload(TypeContactNotify, ContactNotifyPayload{MessageID: "   "})

	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("err = %v, want ErrInvalidJobPayload", err)
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	j := job.New(job.CreateRequest{Type: TypeContactNotify})

	_, err := DecodePayload(j)

	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("err = %v, want ErrInvalidJobPayload", err)
	}
}
