package websocket

// ActionEvent marks a message whose payload is an activity event.
const ActionEvent = "event"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}
