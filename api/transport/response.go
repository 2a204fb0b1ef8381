package transport

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every JSON answer of the web client's API.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewError reports a failure. err is usually a message string.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: err, Meta: meta}
}

// NewFieldErrors reports rejected input, one message per field.
func NewFieldErrors(code string, fields map[string]string) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: map[string]interface{}{"fields": fields}}
}

// OK reports whether the envelope carries a success.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// String renders the envelope as JSON, "{}" if that fails.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
