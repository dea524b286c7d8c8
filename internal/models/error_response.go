package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind - класс ошибки, определяет HTTP-код и политику повторов.
type ErrorKind string

const (
	KindAuthenticationRequired ErrorKind = "AuthenticationRequired"
	KindAuthorizationDenied    ErrorKind = "AuthorizationDenied"
	KindValidation             ErrorKind = "ValidationError"
	KindNotFound               ErrorKind = "NotFound"
	KindConflict               ErrorKind = "Conflict"
	KindInvalidState           ErrorKind = "InvalidState"
	KindExpired                ErrorKind = "Expired"
	KindDependencyFailure      ErrorKind = "DependencyFailure"
	KindInternal               ErrorKind = "Internal"
)

var statusByKind = map[ErrorKind]int{
	KindAuthenticationRequired: http.StatusUnauthorized,
	KindAuthorizationDenied:    http.StatusForbidden,
	KindValidation:             http.StatusBadRequest,
	KindNotFound:               http.StatusNotFound,
	KindConflict:               http.StatusConflict,
	KindInvalidState:           http.StatusConflict,
	KindExpired:                http.StatusGone,
	KindDependencyFailure:      http.StatusBadGateway,
	KindInternal:               http.StatusInternalServerError,
}

// Сигнальные значения для errors.Is, сравниваются по Kind.
var (
	ErrAuthenticationRequired = &ErrorResponse{Kind: KindAuthenticationRequired}
	ErrAuthorizationDenied    = &ErrorResponse{Kind: KindAuthorizationDenied}
	ErrValidation             = &ErrorResponse{Kind: KindValidation}
	ErrNotFound               = &ErrorResponse{Kind: KindNotFound}
	ErrConflict               = &ErrorResponse{Kind: KindConflict}
	ErrInvalidState           = &ErrorResponse{Kind: KindInvalidState}
	ErrExpired                = &ErrorResponse{Kind: KindExpired}
	ErrDependencyFailure      = &ErrorResponse{Kind: KindDependencyFailure}
)

// ErrorResponse описывает ошибку с классом, кодом и сообщением.
type ErrorResponse struct {
	Kind       ErrorKind `json:"-"`
	StatusCode int       `json:"-"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку заданного класса.
func NewErrorResponse(kind ErrorKind, message string) *ErrorResponse {
	code, ok := statusByKind[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	return &ErrorResponse{
		Kind:       kind,
		StatusCode: code,
		Message:    message}
}

// Errorf создает ошибку с форматированным сообщением.
func Errorf(kind ErrorKind, format string, args ...any) *ErrorResponse {
	return NewErrorResponse(kind, fmt.Sprintf(format, args...))
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is позволяет сравнивать ошибки с сигнальными значениями по классу.
func (e *ErrorResponse) Is(target error) bool {
	t, ok := target.(*ErrorResponse)
	return ok && t.Kind == e.Kind
}

// KindOf возвращает класс ошибки, KindInternal для посторонних ошибок.
func KindOf(err error) ErrorKind {
	var e *ErrorResponse
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
