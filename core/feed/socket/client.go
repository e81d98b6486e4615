// Package socket implements the websocket transcript feed transport. The
// upstream producer pushes timed transcript updates for both channels and a
// terminal processing_finished or processing_error message; the client
// surfaces them through the callbacks registered on Stream.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/replay-core/core/feed"
	"github.com/koscakluka/replay-core/core/transcripts"
)

type Client struct {
	url string

	conn    *websocket.Conn
	connMu  sync.Mutex
	options feed.StreamOptions
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

// Stream opens the websocket connection and starts reading upstream events.
// It returns once the connection is established; messages are dispatched to
// the registered callbacks from a background goroutine.
func (c *Client) Stream(ctx context.Context, opts ...feed.StreamOption) error {
	options := &feed.StreamOptions{}
	for _, opt := range opts {
		opt(options)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to open socket connection to the transcript feed: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.options = *options
	c.connMu.Unlock()

	go c.readAndProcessMessages(ctx, conn, *options)

	return nil
}

// Begin asks the producer to start processing the configured audio sample.
func (c *Client) Begin(_ context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("transcript feed is not connected")
	}

	if err := c.conn.WriteJSON(startProcessingMessage{
		Type:        typeStartProcessing,
		AudioSample: c.options.AudioSample,
	}); err != nil {
		return fmt.Errorf("failed to request processing start: %w", err)
	}
	return nil
}

// Close sends a close frame and tears the connection down. The read loop
// treats the resulting close as clean and does not report a disconnect.
func (c *Client) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return nil
	}

	conn := c.conn
	c.conn = nil

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}

func (c *Client) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, options feed.StreamOptions) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			c.connMu.Lock()
			closedLocally := c.conn == nil
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()

			if !closedLocally && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Transcript feed connection lost", "error", err)
				if options.DisconnectCallback != nil {
					options.DisconnectCallback()
				}
			}
			return
		}
		if msgType == websocket.TextMessage {
			c.processMessage(ctx, msg, options)
		}
	}
}

func (c *Client) processMessage(_ context.Context, msg []byte, options feed.StreamOptions) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		log.Println("Failed to unmarshal transcript feed message", "error", err)
		return
	}

	switch parsedMsg.Type {
	case typeRawTranscriptUpdate, typeCorrectedTranscriptUpdate:
		var update transcriptUpdateMessage
		if err := json.Unmarshal(msg, &update); err != nil {
			log.Println("Failed to unmarshal transcript update", "error", err)
			return
		}

		channel := transcripts.ChannelRaw
		if parsedMsg.Type == typeCorrectedTranscriptUpdate {
			channel = transcripts.ChannelCorrected
		}
		if options.SegmentCallback != nil {
			options.SegmentCallback(channel, update.Text, update.EndTime)
		}

	case typeProcessingFinished:
		var finished processingFinishedMessage
		if err := json.Unmarshal(msg, &finished); err != nil {
			log.Println("Failed to unmarshal processing finished message", "error", err)
			return
		}
		if options.FinishedCallback != nil {
			options.FinishedCallback(finished.Status)
		}

	case typeProcessingError:
		var processingErr processingErrorMessage
		if err := json.Unmarshal(msg, &processingErr); err != nil {
			log.Println("Failed to unmarshal processing error message", "error", err)
			return
		}
		if options.ErrorCallback != nil {
			options.ErrorCallback(processingErr.Error)
		}

	default:
		log.Println("Ignoring unknown transcript feed message", "type", parsedMsg.Type)
	}
}
