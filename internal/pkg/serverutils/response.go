package serverutils

// Response is the envelope every endpoint returns. Code mirrors the HTTP
// status; ErrorCode is a stable machine string so clients can branch on the
// failure kind instead of parsing messages.
type Response[T any] struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Response[any] {
	return Response[any]{
		Code:    code,
		Message: message,
	}
}

func ErrorResponseWithCode(code int, errorCode, message string) Response[any] {
	return Response[any]{
		Code:      code,
		Message:   message,
		ErrorCode: errorCode,
	}
}
