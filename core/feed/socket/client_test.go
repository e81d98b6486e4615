package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/replay-core/core/feed"
	"github.com/koscakluka/replay-core/core/transcripts"
)

func TestProcessMessageDispatchesTranscriptUpdates(t *testing.T) {
	client := NewClient("")

	type received struct {
		channel transcripts.Channel
		text    string
		endTime float64
	}
	segments := []received{}
	options := feed.StreamOptions{
		SegmentCallback: func(channel transcripts.Channel, text string, endTime float64) {
			segments = append(segments, received{channel, text, endTime})
		},
	}

	client.processMessage(context.Background(),
		[]byte(`{"type":"raw_transcript_update","text":"hello","end_time":1.25}`), options)
	client.processMessage(context.Background(),
		[]byte(`{"type":"corrected_transcript_update","text":"Hello.","end_time":1.25}`), options)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].channel != transcripts.ChannelRaw || segments[0].text != "hello" || segments[0].endTime != 1.25 {
		t.Fatalf("unexpected raw segment %+v", segments[0])
	}
	if segments[1].channel != transcripts.ChannelCorrected || segments[1].text != "Hello." {
		t.Fatalf("unexpected corrected segment %+v", segments[1])
	}
}

func TestProcessMessageDispatchesTerminalMessages(t *testing.T) {
	client := NewClient("")

	finishedStatus := ""
	errorMessage := ""
	options := feed.StreamOptions{
		FinishedCallback: func(status string) { finishedStatus = status },
		ErrorCallback:    func(message string) { errorMessage = message },
	}

	client.processMessage(context.Background(),
		[]byte(`{"type":"processing_finished","status":"Processing finished successfully."}`), options)
	client.processMessage(context.Background(),
		[]byte(`{"type":"processing_error","error":"transcription failed"}`), options)

	if finishedStatus != "Processing finished successfully." {
		t.Fatalf("unexpected finished status %q", finishedStatus)
	}
	if errorMessage != "transcription failed" {
		t.Fatalf("unexpected error message %q", errorMessage)
	}
}

func TestProcessMessageIgnoresMalformedAndUnknownMessages(t *testing.T) {
	client := NewClient("")

	calls := atomic.Int32{}
	options := feed.StreamOptions{
		SegmentCallback:  func(transcripts.Channel, string, float64) { calls.Add(1) },
		FinishedCallback: func(string) { calls.Add(1) },
		ErrorCallback:    func(string) { calls.Add(1) },
	}

	client.processMessage(context.Background(), []byte(`not json at all`), options)
	client.processMessage(context.Background(), []byte(`{"type":"heartbeat"}`), options)

	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no callbacks for malformed or unknown messages, got %d", got)
	}
}

func TestProcessMessageWithoutCallbacksDoesNotPanic(t *testing.T) {
	client := NewClient("")

	client.processMessage(context.Background(),
		[]byte(`{"type":"raw_transcript_update","text":"hello","end_time":1.0}`), feed.StreamOptions{})
	client.processMessage(context.Background(),
		[]byte(`{"type":"processing_finished","status":"done"}`), feed.StreamOptions{})
}

func TestBeginWithoutConnectionFails(t *testing.T) {
	client := NewClient("")

	if err := client.Begin(context.Background()); err == nil {
		t.Fatalf("expected an error when beginning without a connection")
	}
}

var upgrader = websocket.Upgrader{}

type feedServer struct {
	started chan startProcessingMessage
	script  func(conn *websocket.Conn)
}

func (s *feedServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	var start startProcessingMessage
	if err := json.Unmarshal(msg, &start); err == nil {
		s.started <- start
	}

	if s.script != nil {
		s.script(conn)
	}
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestStreamDeliversUpstreamEventsEndToEnd(t *testing.T) {
	fs := &feedServer{
		started: make(chan startProcessingMessage, 1),
		script: func(conn *websocket.Conn) {
			conn.WriteJSON(transcriptUpdateMessage{Type: typeRawTranscriptUpdate, Text: "hello there", EndTime: 2.0})
			conn.WriteJSON(transcriptUpdateMessage{Type: typeCorrectedTranscriptUpdate, Text: "Hello, there.", EndTime: 2.0})
			conn.WriteJSON(processingFinishedMessage{Type: typeProcessingFinished, Status: "Processing finished successfully."})
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		},
	}
	server := httptest.NewServer(http.HandlerFunc(fs.handle))
	defer server.Close()

	var mu sync.Mutex
	texts := []string{}
	finished := make(chan string, 1)
	disconnects := atomic.Int32{}

	client := NewClient(wsURL(server))
	err := client.Stream(context.Background(),
		feed.WithAudioSample("sample.wav"),
		feed.WithSegmentCallback(func(_ transcripts.Channel, text string, _ float64) {
			mu.Lock()
			defer mu.Unlock()
			texts = append(texts, text)
		}),
		feed.WithFinishedCallback(func(status string) { finished <- status }),
		feed.WithDisconnectCallback(func() { disconnects.Add(1) }),
	)
	if err != nil {
		t.Fatalf("unexpected error opening stream: %v", err)
	}
	defer client.Close()

	if err := client.Begin(context.Background()); err != nil {
		t.Fatalf("unexpected error requesting processing: %v", err)
	}

	select {
	case start := <-fs.started:
		if start.Type != typeStartProcessing || start.AudioSample != "sample.wav" {
			t.Fatalf("unexpected start message %+v", start)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the start message")
	}

	select {
	case status := <-finished:
		if status != "Processing finished successfully." {
			t.Fatalf("unexpected finish status %q", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the finished message")
	}

	mu.Lock()
	got := append([]string(nil), texts...)
	mu.Unlock()
	if len(got) != 2 || got[0] != "hello there" || got[1] != "Hello, there." {
		t.Fatalf("unexpected transcript updates %v", got)
	}

	// Normal closure after completion is not a disconnect.
	time.Sleep(50 * time.Millisecond)
	if got := disconnects.Load(); got != 0 {
		t.Fatalf("expected no disconnect callback after a clean close, got %d", got)
	}
}

func TestStreamReportsAbruptDisconnect(t *testing.T) {
	fs := &feedServer{
		started: make(chan startProcessingMessage, 1),
		script: func(conn *websocket.Conn) {
			conn.WriteJSON(transcriptUpdateMessage{Type: typeRawTranscriptUpdate, Text: "partial", EndTime: 1.0})
			// Drop the underlying connection without a close handshake.
			conn.Close()
		},
	}
	server := httptest.NewServer(http.HandlerFunc(fs.handle))
	defer server.Close()

	disconnected := make(chan struct{})
	client := NewClient(wsURL(server))
	err := client.Stream(context.Background(),
		feed.WithDisconnectCallback(func() { close(disconnected) }),
	)
	if err != nil {
		t.Fatalf("unexpected error opening stream: %v", err)
	}

	if err := client.Begin(context.Background()); err != nil {
		t.Fatalf("unexpected error requesting processing: %v", err)
	}

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the disconnect callback")
	}
}

func TestStreamFailsWhenServerIsUnreachable(t *testing.T) {
	client := NewClient("ws://127.0.0.1:1/feed")

	if err := client.Stream(context.Background()); err == nil {
		t.Fatalf("expected an error when the feed server is unreachable")
	}
}
