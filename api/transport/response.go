package transport

// Envelope wraps every JSON body the service writes.
type Envelope struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
	Meta   any    `json:"meta,omitempty"`
}

func NewSuccess(data any, meta any) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope; details travel in Meta.
func NewError(code, message string, meta any) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  message,
		Meta:   meta,
	}
}
