package models

// Коды ошибок API.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnavailable  = "STORE_UNAVAILABLE"
	ErrCodeDecodeFailed = "DECODE_FAILED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ChoiceEvent - событие, публикуемое после сохранения развилки.
// Вес (даже в виде токена) в событие не попадает.
type ChoiceEvent struct {
	EventID         string  `json:"eventId"`
	Type            string  `json:"type"`
	ChoiceID        string  `json:"choiceId"`
	Player          string  `json:"player"`
	Chapter         int     `json:"chapter"`
	ButterflyEffect float64 `json:"butterflyEffect"`
	Timestamp       int64   `json:"timestamp"`
}

// EventTypeChoiceSubmitted is the only event type emitted today.
const EventTypeChoiceSubmitted = "choice.submitted"
