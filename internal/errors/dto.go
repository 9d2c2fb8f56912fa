package errors

// ErrorResponse is the body written by the API error handler
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CodeFromErr returns the machine readable code of the first taxonomy class err belongs to
func CodeFromErr(err error) string {
	for _, m := range statusCodeMap {
		if Is(err, m.err) {
			if ie, ok := m.err.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ErrCodeSystemError
}
