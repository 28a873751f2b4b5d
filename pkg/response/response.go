package response

// Response is the standard API envelope: {success, message?, data, count?}
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// Success wraps data in a successful envelope
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// SuccessMessage wraps data with a user-facing message
func SuccessMessage(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// SuccessCount wraps a collection together with its element count
func SuccessCount(data interface{}, count int) Response {
	return Response{
		Success: true,
		Data:    data,
		Count:   &count,
	}
}

// Error wraps an error message in a failed envelope
func Error(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}
