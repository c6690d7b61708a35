package ws

import "context"

// Hub maintains the set of active clients and broadcasts messages to the
// clients of a channel. Every map access happens in the Run goroutine.
type clients map[*Client]bool

type broadcastMessage struct {
	channel string
	msg     []byte
}

type Hub struct {
	channels map[string]clients

	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	count      chan chan int
}

func NewHub() *Hub {
	return &Hub{
		channels:   make(map[string]clients),
		broadcast:  make(chan broadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			for _, channel := range client.channels {
				if _, ok := h.channels[channel]; !ok {
					h.channels[channel] = make(clients)
				}
				h.channels[channel][client] = true
			}

		case client := <-h.unregister:
			h.disconnect(client)

		case m := <-h.broadcast:
			for client := range h.channels[m.channel] {
				select {
				case client.send <- m.msg:
				default:
					h.disconnect(client)
				}
			}

		case reply := <-h.count:
			total := map[*Client]bool{}
			for _, cs := range h.channels {
				for c := range cs {
					total[c] = true
				}
			}
			reply <- len(total)

		case <-ctx.Done():
			for _, cs := range h.channels {
				for c := range cs {
					h.disconnect(c)
				}
			}
			return
		}
	}
}

func (h *Hub) disconnect(client *Client) {
	registered := false
	for _, channel := range client.channels {
		if _, ok := h.channels[channel][client]; ok {
			registered = true
			delete(h.channels[channel], client)
			if len(h.channels[channel]) == 0 {
				delete(h.channels, channel)
			}
		}
	}

	if registered {
		close(client.send)
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastByChannel queues msg for every client listening on channel.
func (h *Hub) BroadcastByChannel(channel string, msg []byte) {
	h.broadcast <- broadcastMessage{channel: channel, msg: msg}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	reply := make(chan int)
	h.count <- reply
	return <-reply
}
