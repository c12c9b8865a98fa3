package bus

import "time"

// Location is a point shared by the user through the chat transport.
type Location struct {
	Lat float64
	Lng float64
}

type InboundMessage struct {
	Channel   string
	ChatID    int64
	Text      string
	Command   string // without leading slash, empty for plain text
	Args      []string
	Location  *Location
	Timestamp time.Time
}

// KeyboardHint tells the transport what to do with the reply keyboard.
type KeyboardHint int

const (
	KeyboardNone KeyboardHint = iota
	KeyboardShareLocation
	KeyboardRemove
)

type OutboundMessage struct {
	Channel  string
	ChatID   int64
	Text     string
	Keyboard KeyboardHint
}
