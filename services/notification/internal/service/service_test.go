package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/services/notification/internal/service/mocks"
	"github.com/shestoi/orderflow/services/notification/internal/templates"
)

func newTestDispatcher(t *testing.T, sender Sender) (*Dispatcher, *observer.ObservedLogs) {
	t.Helper()

	renderer, err := templates.NewRenderer()
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	return NewDispatcher(zap.New(core), sender, renderer, 0), logs
}

func testEvent(status contracts.OrderStatus) contracts.DomainEvent {
	return contracts.DomainEvent{
		Status: status,
		Order: contracts.Order{
			OrderID:     "o-42",
			UserEmail:   "a@b.com",
			ProductCode: "P1",
			Quantity:    2,
			Price:       decimal.NewFromInt(150),
		},
	}
}

func TestDispatcher_OnEvent(t *testing.T) {
	tests := []struct {
		name    string
		status  contracts.OrderStatus
		subject string
		body    string
	}{
		{
			name:    "order created",
			status:  contracts.OrderCreated,
			subject: "Order Notification",
			body:    "Your order with ID o-42 with 150 has been processed.",
		},
		{
			name:    "order cancelled",
			status:  contracts.OrderCancelled,
			subject: "Order Cancellation",
			body:    "Your order with ID o-42 has been cancelled.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := mocks.NewSender(t)
			sender.On("Send", mock.Anything, "a@b.com", tt.subject, tt.body).Return(nil).Once()

			d, logs := newTestDispatcher(t, sender)
			d.OnEvent(context.Background(), testEvent(tt.status))

			require.Equal(t, 1, logs.FilterMessage("notification sent").Len())
		})
	}
}

func TestDispatcher_OrderUpdatedIsLogOnly(t *testing.T) {
	sender := mocks.NewSender(t)

	d, logs := newTestDispatcher(t, sender)
	d.OnEvent(context.Background(), testEvent(contracts.OrderUpdated))

	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.Equal(t, 1, logs.FilterMessage("order updated").Len())
}

func TestDispatcher_UnknownStatusIsSkipped(t *testing.T) {
	sender := mocks.NewSender(t)

	d, logs := newTestDispatcher(t, sender)
	d.OnEvent(context.Background(), testEvent("ORDER_SHIPPED"))

	skipped := logs.FilterMessage("unknown order status, event skipped").All()
	require.Len(t, skipped, 1)
	require.Equal(t, zapcore.WarnLevel, skipped[0].Level)
	require.Equal(t, "ORDER_SHIPPED", skipped[0].ContextMap()["order_status"])
}

func TestDispatcher_SenderFailureIsLogged(t *testing.T) {
	sender := mocks.NewSender(t)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp unavailable")).Once()

	d, logs := newTestDispatcher(t, sender)

	require.NotPanics(t, func() {
		d.OnEvent(context.Background(), testEvent(contracts.OrderCreated))
	})
	require.Equal(t, 1, logs.FilterMessage("failed to handle order event").Len())
	require.Zero(t, logs.FilterMessage("notification sent").Len())
}

func TestDispatcher_SenderPanicIsRecovered(t *testing.T) {
	sender := mocks.NewSender(t)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("boom") }).
		Return(nil).Once()

	d, logs := newTestDispatcher(t, sender)

	require.NotPanics(t, func() {
		d.OnEvent(context.Background(), testEvent(contracts.OrderCancelled))
	})
	require.Equal(t, 1, logs.FilterMessage("notification handler panicked").Len())
}

func TestDispatcher_DuplicateDeliverySendsTwice(t *testing.T) {
	sender := mocks.NewSender(t)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	d, _ := newTestDispatcher(t, sender)
	event := testEvent(contracts.OrderCreated)
	d.OnEvent(context.Background(), event)
	d.OnEvent(context.Background(), event)
}
