// Package deepgram streams pre-recorded audio to the Deepgram listen
// websocket and reports finalized segments with their end times. The end time
// of a segment is the stream offset where the provider finalized it, which is
// also the playback position at which it may be revealed.
package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/replay-core/core/audio"
	"github.com/koscakluka/replay-core/core/speechtotext"
)

type TranscriptionClient struct {
	conn   *websocket.Conn
	connMu sync.Mutex
}

func NewTranscriptionClient() *TranscriptionClient {
	return &TranscriptionClient{}
}

// Transcribe opens the websocket and starts reading provider messages. Audio
// is pushed with SendAudio; CloseStream flushes the provider's buffer so the
// trailing segments finalize.
func (s *TranscriptionClient) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := &speechtotext.TranscriptionOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(options)
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := connectWebsocket(connectionOptions{
		sampleRate:     encoding.SampleRate,
		encoding:       encoding.Format.Name(),
		interimResults: options.InterimTranscriptionCallback != nil,
	})
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	go s.readAndProcessMessages(ctx, conn, *options)

	return nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string

	interimResults bool
}

func connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", "nova-3")
	queryParams.Set("language", "en-US")
	queryParams.Set("smart_format", "true")
	if options.interimResults {
		queryParams.Set("interim_results", "true")
	}

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, err
}

func (s *TranscriptionClient) SendAudio(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("transcription stream is not open")
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

// CloseStream tells the provider no more audio is coming. The provider
// finalizes buffered segments and closes the connection from its side.
func (s *TranscriptionClient) CloseStream() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		if err := s.conn.WriteJSON(struct {
			Type string `json:"type"`
		}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
			return fmt.Errorf("failed to flush deepgram buffer through websocket: %w", err)
		}
	}
	return nil
}

func (s *TranscriptionClient) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, options speechtotext.TranscriptionOptions) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if err.Error() != "websocket: close 1000 (normal)" {
				log.Println("Failed to read deepgram websocket message", "error", err)
			}

			s.connMu.Lock()
			s.conn = nil
			s.connMu.Unlock()
			conn.Close()

			if options.StreamClosedCallback != nil {
				options.StreamClosedCallback()
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			s.processMessage(ctx, msg, options)
		}
	}
}

func (s *TranscriptionClient) processMessage(_ context.Context, msg []byte, options speechtotext.TranscriptionOptions) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	err := json.Unmarshal(msg, &parsedMsg)
	if err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}

		transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		if len(transcript) == 0 {
			return
		}

		if msgResp.IsFinal {
			if options.TimedTranscriptionCallback != nil {
				options.TimedTranscriptionCallback(transcript, segmentEndTime(msgResp))
			}
		} else if options.InterimTranscriptionCallback != nil {
			options.InterimTranscriptionCallback(transcript)
		}
	}
}

// segmentEndTime is the stream offset where the segment ends.
func segmentEndTime(msg api.MessageResponse) float64 {
	return msg.Start + msg.Duration
}
