package response

// Failure is the body of every non-2xx JSON response.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Error builds a failure body; an empty msg falls back to the default text for status.
func Error(status int, customMsg string) Failure {
	msg := StatusMsgMap[status]
	if customMsg != "" {
		msg = customMsg
	}
	if msg == "" {
		msg = StatusMsgMap[StatusServerError]
	}
	return Failure{Success: false, Message: msg}
}
