package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMsgSize = 4096
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Client struct {
	UserID string

	conn     *websocket.Conn
	channels []string
	send     chan []byte
}

func NewClient(conn *websocket.Conn, userID string, channels ...string) *Client {
	return &Client{
		UserID:   userID,
		conn:     conn,
		channels: channels,
		send:     make(chan []byte, 128),
	}
}

// Send queues a message to this client only. It returns false if the queue
// is full.
func (c *Client) Send(msg []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump blocks reading messages until the connection fails, onMessage is
// called for every text message.
func (c *Client) ReadPump(onMessage func(msg []byte)) error {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMsgSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		t, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}

		if t == websocket.TextMessage && onMessage != nil {
			onMessage(msg)
		}
	}
}

// WritePump forwards queued messages to the connection until the hub closes
// the queue.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
