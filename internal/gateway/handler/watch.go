package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"rafters/internal/gateway/service/analysis"
)

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// WatchHandler streams snapshot-change events to websocket clients,
// typically docs-site previews that re-render when tokens reload.
type WatchHandler struct {
	svc *analysis.Service
}

func NewWatchHandler(svc *analysis.Service) *WatchHandler {
	return &WatchHandler{svc: svc}
}

func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.svc.Subscribe()
	defer cancel()

	// Reader goroutine only services pongs and close frames.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send the current snapshot immediately so clients need no extra
	// round-trip to learn the served version.
	snap := h.svc.Snapshot()
	hello := analysis.Event{
		Type:    "snapshot",
		Version: snap.Version(),
		Tokens:  len(snap.Tokens()),
		Edges:   len(snap.Edges()),
	}
	_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
	if err := conn.WriteJSON(hello); err != nil {
		return
	}

	ping := time.NewTicker(watchWSPingEvery)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("watch: write failed: %v", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
