package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	platformrabbit "github.com/shestoi/orderflow/platform/rabbitmq"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	publishErr error
	closed     int
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp091.Table) error {
	if kind != amqp091.ExchangeFanout || !durable {
		return errors.New("unexpected exchange settings")
	}
	c.declared = append(c.declared, name)
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed++
	return nil
}

func newTestPublisher(ch *fakeChannel) *Publisher {
	return newPublisher(zap.NewNop(), func() (amqpChannel, error) { return ch, nil }, func() error { return nil })
}

func testEvent() contracts.DomainEvent {
	return contracts.NewOrderCreated(contracts.Order{
		OrderID:     "O1",
		UserEmail:   "a@b.com",
		ProductCode: "P1",
		Quantity:    2,
		Price:       decimal.RequireFromString("9.99"),
	})
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(ch)

	require.NoError(t, p.Publish(context.Background(), "alerts", testEvent()))
	require.NoError(t, p.Publish(context.Background(), "alerts", testEvent()))

	require.Equal(t, []string{"orderflow.alerts"}, ch.declared)
	require.Len(t, ch.published, 2)
	require.Equal(t, 2, ch.closed)

	msg := ch.published[0]
	require.Equal(t, "orderflow.alerts", msg.exchange)
	require.Equal(t, "O1", msg.key)
	require.Equal(t, amqp091.Persistent, msg.msg.DeliveryMode)
	require.Equal(t, "ORDER_CREATED", msg.msg.Type)
	require.NotEmpty(t, msg.msg.MessageId)

	decoded, err := contracts.DecodeEvent(msg.msg.Body)
	require.NoError(t, err)
	require.Equal(t, "O1", decoded.Order.OrderID)
}

func TestPublisher_PublishError(t *testing.T) {
	publishErr := errors.New("channel closed")
	p := newTestPublisher(&fakeChannel{publishErr: publishErr})

	err := p.Publish(context.Background(), "alerts", testEvent())
	require.ErrorIs(t, err, publishErr)
}

func TestPublisher_OpenChannelError(t *testing.T) {
	openErr := errors.New("connection closed")
	p := newPublisher(zap.NewNop(), func() (amqpChannel, error) { return nil, openErr }, func() error { return nil })

	err := p.Publish(context.Background(), "alerts", testEvent())
	require.ErrorIs(t, err, openErr)
}

func TestPublisher_Check(t *testing.T) {
	p := newPublisher(zap.NewNop(), nil, func() error { return nil })
	require.NoError(t, p.Check(context.Background()))

	p.isClosed = func() bool { return true }
	require.ErrorIs(t, p.Check(context.Background()), platformrabbit.ErrConnectionClosed)
}
