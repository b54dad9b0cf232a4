package model

type LivenessHTTP struct {
	// Message tells the caller that the service is up.
	Message string `json:"message"`
}

type ValidationErrorHTTP struct {
	// Detail lists every part of the payload that failed validation.
	Detail []FieldError `json:"detail"`
}

type ErrorHTTP struct {
	Error string `json:"error"`
}
