package dto

import "encoding/json"

// Envelope is the wire shape of every ajax response: {success, data}.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// ErrorData is the data payload of a failed action. Errors is present only for
// validation failures and keys messages by the client's field identifiers.
type ErrorData struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
