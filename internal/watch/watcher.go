// Package watch subscribes to the marketplace's live product event stream
// so an open browsing session can refetch when listings change.
package watch

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is one product change received from the stream.
type Event struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Watcher reads product events from a websocket URL and hands them to a
// callback. It does not reconnect; a broken stream is reported and the
// caller decides whether to start a new watcher.
type Watcher struct {
	url     string
	onEvent func(Event)

	mu      sync.Mutex
	conn    *websocket.Conn
	stopped bool
}

// New creates a watcher for the given ws:// URL.
func New(url string, onEvent func(Event)) *Watcher {
	return &Watcher{url: url, onEvent: onEvent}
}

// Run connects and blocks reading events until the stream breaks or Stop
// is called. A Stop-initiated exit returns nil.
func (w *Watcher) Run() error {
	conn, _, err := websocket.DefaultDialer.Dial(w.url, nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		conn.Close()
		return nil
	}
	w.conn = conn
	w.mu.Unlock()

	log.Info().Str("url", w.url).Msg("Watching product events")
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			w.mu.Lock()
			stopped := w.stopped
			w.mu.Unlock()
			if stopped {
				return nil
			}
			return err
		}
		if w.onEvent != nil {
			w.onEvent(ev)
		}
	}
}

// Stop closes the stream and makes Run return.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.conn != nil {
		w.conn.Close()
	}
}
