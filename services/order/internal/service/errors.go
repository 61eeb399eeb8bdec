package service

import (
	"errors"

	"github.com/shestoi/orderflow/services/order/internal/breaker"
)

// ErrPaymentDeclined - бизнес-отказ payment сервиса. Не считается сбоем breaker.
var ErrPaymentDeclined = errors.New("payment declined")

// Kind - категория ошибки оркестрации
type Kind int

const (
	KindValidation Kind = iota + 1
	KindOutOfStock
	KindPaymentFailed
	KindServiceUnavailable
)

// Code возвращает errorCode для ответа клиенту
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindOutOfStock:
		return "OUT_OF_STOCK"
	case KindPaymentFailed:
		return "PAYMENT_FAILED"
	case KindServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

func (k Kind) String() string {
	return k.Code()
}

// Error - типизированная ошибка ProcessOrder. Err хранит исходную причину для диагностики.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf извлекает Kind из цепочки ошибок
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsBreakerFailure - классификатор для breaker.Settings.IsFailure.
// Отказ в оплате и отмена запроса клиентом не считаются сбоями payment сервиса.
func IsBreakerFailure(err error) bool {
	if errors.Is(err, ErrPaymentDeclined) {
		return false
	}
	return breaker.DefaultIsFailure(err)
}
