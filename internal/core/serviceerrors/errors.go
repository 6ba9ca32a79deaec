package serviceerrors

import "errors"

type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindConflict
	KindUnprocessableEntity
	KindInvalidRequest
	KindValidation
)

func IsOfKind(err error, kind ErrorKind) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind == kind
	}
	return false
}

type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ServiceError struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: message}
}

func NewUnprocessableEntityError(message string) *ServiceError {
	return &ServiceError{Kind: KindUnprocessableEntity, Message: message}
}

func NewInvalidRequestError(message string) *ServiceError {
	return &ServiceError{Kind: KindInvalidRequest, Message: message}
}

// NewValidationError reports every failing field of a request at once.
func NewValidationError(fields []FieldError) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

var ErrDuplicateSKU = NewInvalidRequestError("SKU already exists")
