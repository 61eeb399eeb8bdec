package rabbitmq

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	platformrabbit "github.com/shestoi/orderflow/platform/rabbitmq"
)

type fakeAcknowledger struct {
	mu       sync.Mutex
	acked    []uint64
	nacked   []uint64
	requeued []bool
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	a.requeued = append(a.requeued, requeue)
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeChannel struct {
	deliveries chan amqp091.Delivery

	exchange string
	queue    string
	bound    [2]string
	prefetch int
	closed   bool
}

func (c *fakeChannel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp091.Table) error {
	c.exchange = name
	return nil
}

func (c *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	c.prefetch = prefetchCount
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	c.queue = name
	return amqp091.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, _, exchange string, _ bool, _ amqp091.Table) error {
	c.bound = [2]string{name, exchange}
	return nil
}

func (c *fakeChannel) ConsumeWithContext(context.Context, string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return c.deliveries, nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type recordingHandler struct {
	mu     sync.Mutex
	events []contracts.DomainEvent
}

func (h *recordingHandler) OnEvent(_ context.Context, event contracts.DomainEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func delivery(t *testing.T, ack amqp091.Acknowledger, tag uint64, body []byte) amqp091.Delivery {
	t.Helper()
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body}
}

func TestConsumer_AcksDecodedAndNacksMalformed(t *testing.T) {
	created, err := contracts.EncodeEvent(contracts.DomainEvent{
		Status: contracts.OrderCreated,
		Order:  contracts.Order{OrderID: "o-1", ProductCode: "P1", Quantity: 1},
	})
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery, 3)}
	ch.deliveries <- delivery(t, ack, 1, created)
	ch.deliveries <- delivery(t, ack, 2, []byte("not json"))
	ch.deliveries <- delivery(t, ack, 3, created)
	close(ch.deliveries)

	handler := &recordingHandler{}
	c := newConsumer(zap.NewNop(), func() (amqpChannel, error) { return ch, nil }, func() error { return nil }, handler, Options{
		Channel:  "alerts",
		Queue:    "notification.alerts",
		Prefetch: 8,
		Workers:  3,
	})

	require.ErrorIs(t, c.Start(context.Background()), ErrDeliveriesClosed)

	require.Len(t, handler.events, 2)
	require.ElementsMatch(t, []uint64{1, 3}, ack.acked)
	require.Equal(t, []uint64{2}, ack.nacked)
	require.Equal(t, []bool{false}, ack.requeued)

	require.Equal(t, "orderflow.alerts", ch.exchange)
	require.Equal(t, [2]string{"notification.alerts", "orderflow.alerts"}, ch.bound)
	require.Equal(t, 8, ch.prefetch)
	require.True(t, ch.closed)
}

func TestConsumer_StopsOnContextCancel(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery)}
	c := newConsumer(zap.NewNop(), func() (amqpChannel, error) { return ch, nil }, func() error { return nil }, &recordingHandler{}, Options{
		Channel: "alerts",
		Queue:   "q",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.Start(ctx))
	require.Equal(t, 1, c.opts.Workers)
}

func TestConsumer_BrokerClosingDeliveriesIsAnError(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery)}
	c := newConsumer(zap.NewNop(), func() (amqpChannel, error) { return ch, nil }, func() error { return nil }, &recordingHandler{}, Options{
		Channel: "alerts",
		Queue:   "q",
		Workers: 2,
	})

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	// брокер рвёт соединение: amqp091 закрывает канал доставки
	close(ch.deliveries)

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrDeliveriesClosed)
	case <-time.After(time.Second):
		t.Fatal("consumer did not return after delivery channel closed")
	}
	require.True(t, ch.closed)
}

func TestConsumer_Check(t *testing.T) {
	c := newConsumer(zap.NewNop(), nil, func() error { return nil }, &recordingHandler{}, Options{Queue: "q"})
	require.NoError(t, c.Check(context.Background()))

	c.isClosed = func() bool { return true }
	require.ErrorIs(t, c.Check(context.Background()), platformrabbit.ErrConnectionClosed)
}
