package transport

// Envelope wraps every API response. Success responses carry Data, failures
// carry Error; Meta is free-form side-channel information (pagination,
// generation results, health details).
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ErrorBody is the structured error half of an Envelope. Code is the domain
// error code so clients can branch without parsing the message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

func NewError(code, message string, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Error:  &ErrorBody{Code: code, Message: message},
		Meta:   meta,
	}
}

// GenerationMeta accompanies template creation/generation responses. Truncated
// signals that the template's window holds more dates than one expansion call
// was allowed to materialize.
type GenerationMeta struct {
	Generated int  `json:"generated"`
	Truncated bool `json:"truncated"`
}
