package kafka

import "fmt"

// ParseError представляет ошибку декодирования сообщения из топика
type ParseError struct {
	Topic     string
	Partition int
	Offset    int64
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse message %s/%d@%d: %v", e.Topic, e.Partition, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
