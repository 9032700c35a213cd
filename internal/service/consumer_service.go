package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"llm-taskbench/internal/websocket"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the progress topic and hands each update to
// the websocket hub for fan-out.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, hub *websocket.Hub) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var progress websocket.ProgressMessage
	if err := json.Unmarshal(msg.Payload, &progress); err != nil {
		log.Printf("[ERROR] Failed to unmarshal progress message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.hub.Send(progress)
	msg.Ack()
}
