package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 5 * time.Minute
)

// ErrMalformed marks a message that arrived intact but could not be decoded.
// The connection stays usable.
var ErrMalformed = errors.New("malformed message")

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadEnvelope reads one message and peeks at its action. The raw bytes are
// returned so the caller can decode the action-specific payload.
func ReadEnvelope(conn *websocket.Conn) (RequestEnvelope, []byte, error) {
	conn.SetReadDeadline(time.Now().Add(readTimeout))

	var env RequestEnvelope
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return env, nil, err
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, raw, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env, raw, nil
}
