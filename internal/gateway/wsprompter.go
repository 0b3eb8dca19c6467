package gateway

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kairoslabs/kairos/internal/model/advisory"
)

type outgoingMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// wsPrompter adapts a WebSocket connection to the console.Prompter
// interface, so the consultation flow is unaware of the transport.
type wsPrompter struct {
	conn *websocket.Conn
}

func newWSPrompter(conn *websocket.Conn) *wsPrompter {
	return &wsPrompter{conn: conn}
}

// Say pushes a display-only line to the client.
func (p *wsPrompter) Say(text string) {
	if err := p.write("say", text, nil); err != nil {
		log.Printf("[gateway] failed to send text: %v", err)
	}
}

// Ask pushes a prompt and blocks until the client answers.
func (p *wsPrompter) Ask(prompt string) (string, error) {
	if err := p.write("ask", prompt, nil); err != nil {
		return "", fmt.Errorf("send prompt: %w", err)
	}

	for {
		var msg inboundMessage
		if err := p.conn.ReadJSON(&msg); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		if msg.Type == "answer" {
			return strings.TrimSpace(msg.Text), nil
		}
		// Ignore pings and unknown client chatter between prompts.
	}
}

func (p *wsPrompter) sendBundle(bundle *advisory.Bundle) {
	if err := p.write("bundle", "", bundle); err != nil {
		log.Printf("[gateway] failed to send bundle: %v", err)
	}
}

func (p *wsPrompter) sendAbort(reason string) {
	if err := p.write("abort", reason, nil); err != nil {
		log.Printf("[gateway] failed to send abort: %v", err)
	}
}

func (p *wsPrompter) write(msgType, text string, data any) error {
	return p.conn.WriteJSON(outgoingMessage{
		Type:      msgType,
		Text:      text,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
