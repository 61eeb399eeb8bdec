package service

import "context"

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Sender --dir=. --output=./mocks --outpkg=mocks

// Sender отправляет письмо получателю
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
