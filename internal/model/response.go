package model

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse builds a success envelope.
func NewSuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

// NewErrorResponse builds an error envelope. detail is appended to the
// message when non-empty.
func NewErrorResponse(message string, detail string) Response {
	if detail != "" {
		message = message + ": " + detail
	}
	return Response{Success: false, Message: message}
}
