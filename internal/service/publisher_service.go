package service

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"llm-taskbench/internal/websocket"
)

// IPublisherService pushes wizard progress updates onto the in-process
// event bus; the consumer side forwards them to connected dialogs.
type IPublisherService interface {
	PublishProgress(msg websocket.ProgressMessage)
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishProgress(msg websocket.ProgressMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	// Progress is advisory; a failed publish must never fail the run.
	_ = ps.pubSub.Publish(ps.topicName, message.NewMessage(watermill.NewUUID(), payload))
}
