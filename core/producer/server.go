package producer

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server serves the transcript feed over a websocket endpoint. Each
// start_processing request runs one pipeline pass and streams its wire
// events back over the same connection.
type Server struct {
	pipeline *Pipeline
	upgrader websocket.Upgrader
}

func NewServer(pipeline *Pipeline) *Server {
	return &Server{pipeline: pipeline}
}

func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(http.HandlerFunc(s.handleSocket), "transcript feed")
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Failed to upgrade transcript feed connection", "error", err)
		return
	}
	defer conn.Close()

	emitter := &socketEmitter{conn: conn}

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var parsedMsg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &parsedMsg); err != nil {
			log.Println("Failed to unmarshal transcript feed request", "error", err)
			continue
		}
		if parsedMsg.Type != typeStartProcessing {
			log.Println("Ignoring unknown transcript feed request", "type", parsedMsg.Type)
			continue
		}

		var start startProcessingMessage
		if err := json.Unmarshal(msg, &start); err != nil {
			log.Println("Failed to unmarshal start processing request", "error", err)
			continue
		}

		if err := s.pipeline.Process(r.Context(), start.AudioSample, emitter); err != nil {
			log.Println("Processing run failed", "error", err)
		}
	}
}

// socketEmitter serializes wire events onto one websocket connection.
type socketEmitter struct {
	conn   *websocket.Conn
	connMu sync.Mutex
}

func (e *socketEmitter) emit(message any) error {
	e.connMu.Lock()
	defer e.connMu.Unlock()
	return e.conn.WriteJSON(message)
}

func (e *socketEmitter) EmitRawTranscript(text string, endTime float64) error {
	return e.emit(transcriptUpdateMessage{Type: typeRawTranscriptUpdate, Text: text, EndTime: endTime})
}

func (e *socketEmitter) EmitCorrectedTranscript(text string, endTime float64) error {
	return e.emit(transcriptUpdateMessage{Type: typeCorrectedTranscriptUpdate, Text: text, EndTime: endTime})
}

func (e *socketEmitter) EmitFinished(status string) error {
	return e.emit(processingFinishedMessage{Type: typeProcessingFinished, Status: status})
}

func (e *socketEmitter) EmitError(message string) error {
	return e.emit(processingErrorMessage{Type: typeProcessingError, Error: message})
}
