package transport

import (
	"bytes"
	"encoding/json"

	"github.com/fastygo/memo/domain"
)

// SessionResponse answers GET /api/session.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// DecodeTaskOperation parses a task operation envelope, rejecting unknown
// fields and trailing data.
func DecodeTaskOperation(body []byte) (domain.TaskOperation, error) {
	var op domain.TaskOperation
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&op); err != nil {
		return domain.TaskOperation{}, domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	if dec.More() {
		return domain.TaskOperation{}, domain.ErrInvalidPayload
	}
	return op, nil
}
