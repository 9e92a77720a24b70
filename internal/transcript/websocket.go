package transcript

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// captionMessage is the wire shape of one captioning segment.
type captionMessage struct {
	Text string `json:"text"`
}

// WebSocketSource feeds a Feed from a live captioning websocket stream. A
// read error or a cancelled context ends the stream; the transcript
// accumulated so far stays readable afterwards.
type WebSocketSource struct {
	feed   *Feed
	conn   *websocket.Conn
	logger *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// DialWebSocket connects to a captioning endpoint and starts consuming
// segments into a fresh feed.
func DialWebSocket(ctx context.Context, url string, logger *slog.Logger) (*WebSocketSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	s := &WebSocketSource{
		feed:   NewFeed(),
		conn:   conn,
		logger: logger,
		done:   make(chan struct{}),
	}
	go s.readLoop(ctx)
	return s, nil
}

// Transcript implements Provider.
func (s *WebSocketSource) Transcript() string {
	return s.feed.Transcript()
}

// Feed exposes the underlying feed, for callers that also accept segments
// out of band (e.g. the control API's transcript endpoint).
func (s *WebSocketSource) Feed() *Feed {
	return s.feed
}

// Close tears down the connection. Safe to call more than once.
func (s *WebSocketSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
		<-s.done
	})
	return err
}

func (s *WebSocketSource) readLoop(ctx context.Context) {
	defer close(s.done)
	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("transcript stream ended", slog.String("error", err.Error()))
			}
			return
		}

		var msg captionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("dropping unparseable caption", slog.String("error", err.Error()))
			continue
		}
		s.feed.Append(msg.Text)
	}
}
