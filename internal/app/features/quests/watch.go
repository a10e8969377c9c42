// internal/app/features/quests/watch.go
package quests

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	queststore "github.com/dalemusser/sidequest/internal/app/store/quests"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	watchWriteWait  = 10 * time.Second
	watchPongWait   = 60 * time.Second
	watchPingPeriod = watchPongWait * 9 / 10
)

// watchMessage is one frame on a quest watch socket.
type watchMessage struct {
	Type  string        `json:"type"` // snapshot | deleted
	Quest *models.Quest `json:"quest,omitempty"`
	ID    string        `json:"id,omitempty"`
}

func (h *Handler) upgrader() websocket.Upgrader {
	u := websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	if len(h.Origins) > 0 {
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if slices.Contains(h.Origins, "*") || slices.Contains(h.Origins, origin) {
				return true
			}
			o, err := url.Parse(origin)
			return err == nil && strings.EqualFold(o.Host, r.Host)
		}
	}
	return u
}

// ServeWatch handles GET /quests/{id}/watch. It upgrades to a WebSocket,
// sends the current quest, then a fresh snapshot after every committed
// change until the quest is deleted or either side closes.
func (h *Handler) ServeWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Subscribe before reading so no change between the two is missed.
	sub := h.Hub.Subscribe(queststore.Collection, id)
	defer sub.Close()

	q, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.Log.Warn("watch: upgrade failed", zap.String("quest_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	h.Log.Debug("watch opened", zap.String("quest_id", id), zap.String("user_id", currentUserID(r)))

	// The read side only drains control frames and notices the client leaving.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_ = conn.SetReadDeadline(time.Now().Add(watchPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(watchPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(m watchMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
		return conn.WriteJSON(m)
	}

	if err := send(watchMessage{Type: "snapshot", Quest: &q}); err != nil {
		return
	}

	ping := time.NewTicker(watchPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(watchWriteWait)); err != nil {
				return
			}
		case ev, ok := <-sub.Events():
			if !ok {
				h.closeWatch(conn, websocket.CloseGoingAway, "server shutting down")
				return
			}
			if ev.Type == docstore.EventDeleted {
				_ = send(watchMessage{Type: "deleted", ID: ev.ID})
				h.closeWatch(conn, websocket.CloseNormalClosure, "quest removed")
				return
			}
			var snap models.Quest
			if err := ev.Decode(&snap); err != nil {
				h.Log.Error("watch: decode snapshot", zap.String("quest_id", id), zap.Error(err))
				continue
			}
			if err := send(watchMessage{Type: "snapshot", Quest: &snap}); err != nil {
				return
			}
		}
	}
}

func (h *Handler) closeWatch(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(watchWriteWait))
}
