package chat

import "encoding/json"

// MessageEvent is the only event the hub relays.
const MessageEvent = "message"

// Envelope is the frame clients exchange over the socket. Data is opaque to
// the server and is relayed without re-encoding.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
