package response

import (
	"encoding/json"
	"time"
)

const (
	// MessageSuccess is the message used for successful responses.
	MessageSuccess = "Success"
	// DefaultErrorMessage is the catch-all message for 500 responses.
	DefaultErrorMessage = "Something went wrong"
	// InternalServerErrorCode is the error code for 500 responses.
	InternalServerErrorCode = 500

	// DateTimeFormat is the wire format for DateTime values.
	DateTimeFormat = "2006-01-02 15:04:05"
)

// Resp is the standard JSON response body.
type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
}

// DateTime is a datetime that marshals as DateTimeFormat. Health payloads
// report server time with it.
type DateTime time.Time

// MarshalJSON implements json.Marshaler for DateTime.
func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Local().Format(DateTimeFormat))
}
