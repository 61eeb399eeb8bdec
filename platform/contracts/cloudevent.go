package contracts

import "encoding/json"

// CloudEvent - конверт CloudEvents 1.0 в structured mode, как его доставляет Dapr pub/sub
type CloudEvent struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	SpecVersion     string          `json:"specversion"`
	DataContentType string          `json:"datacontenttype"`
	Topic           string          `json:"topic,omitempty"`
	PubsubName      string          `json:"pubsubname,omitempty"`
	Data            json.RawMessage `json:"data"`
}

// NewCloudEvent заворачивает доменное событие в CloudEvents конверт
func NewCloudEvent(id, source, pubsub, topic string, event DomainEvent) (CloudEvent, error) {
	data, err := EncodeEvent(event)
	if err != nil {
		return CloudEvent{}, err
	}
	return CloudEvent{
		ID:              id,
		Source:          source,
		Type:            "com.orderflow." + string(event.Status),
		SpecVersion:     "1.0",
		DataContentType: "application/json",
		Topic:           topic,
		PubsubName:      pubsub,
		Data:            data,
	}, nil
}
