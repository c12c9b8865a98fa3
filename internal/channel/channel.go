package channel

import (
	"context"

	"github.com/jinbless/tgcalendar/internal/bus"
)

// Channel is a chat transport: it feeds user messages into the bus and
// delivers outbound replies.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(msg bus.OutboundMessage) error
}

// BaseChannel carries the identity and bus handle shared by transports.
type BaseChannel struct {
	name string
	bus  *bus.MessageBus
}

func NewBaseChannel(name string, b *bus.MessageBus) BaseChannel {
	return BaseChannel{name: name, bus: b}
}

func (c *BaseChannel) Name() string {
	return c.name
}
