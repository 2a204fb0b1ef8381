package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/memo/domain"
)

func TestDecodeTaskOperation(t *testing.T) {
	op, err := DecodeTaskOperation([]byte(`{"operation":"DELETE","taskId":7}`))
	require.NoError(t, err)
	assert.Equal(t, domain.TaskOperation{Operation: domain.OperationDelete, TaskID: 7}, op)

	_, err = DecodeTaskOperation([]byte(`{"operation":"DELETE","extra":1}`))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = DecodeTaskOperation([]byte(`{"operation":"READ"} {}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = DecodeTaskOperation([]byte(`not json`))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestEnvelopeOmitsEmptyParts(t *testing.T) {
	assert.JSONEq(t, `{"status":"success","data":{"authenticated":false}}`,
		NewSuccess(SessionResponse{}, nil).String())
	assert.JSONEq(t, `{"status":"error","code":"INVALID","error":"bad"}`,
		NewError("INVALID", "bad", nil).String())
}

func TestFieldErrors(t *testing.T) {
	env := NewFieldErrors("INVALID", map[string]string{"title": "title is required"})
	assert.False(t, env.OK())
	assert.JSONEq(t, `{"status":"error","code":"INVALID","error":{"fields":{"title":"title is required"}}}`, env.String())
	assert.True(t, NewSuccess(nil, nil).OK())
}
