package quests_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/sidequest/internal/app/lifecycle"
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type frame struct {
	Type  string        `json:"type"`
	Quest *models.Quest `json:"quest"`
	ID    string        `json:"id"`
}

func TestServeWatch(t *testing.T) {
	h, fx, b := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Watcher", models.DefaultPreferences())
	q := fx.CreateQuest(ctx, "Stargazing", testutil.WithTeamSize(2, 4))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, auth.WithTestUser(req, &auth.SessionUser{ID: u.ID, Name: u.DisplayName}))
		})
	})
	r.Get("/quests/{id}/watch", h.ServeWatch)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/quests/" + q.ID + "/watch"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() frame {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		return f
	}

	first := read()
	if first.Type != "snapshot" || first.Quest == nil || first.Quest.ID != q.ID {
		t.Fatalf("unexpected first frame %+v", first)
	}

	lc := lifecycle.New(b, zap.NewNop(), nil, lifecycle.Options{})
	if _, err := lc.Join(ctx, q.ID, u.ID, false); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	update := read()
	if update.Type != "snapshot" || len(update.Quest.TeamMembers) != 1 || update.Quest.Status != models.QuestForming {
		t.Fatalf("unexpected update frame %+v", update)
	}

	if err := b.Delete(context.Background(), "quests", q.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	gone := read()
	if gone.Type != "deleted" || gone.ID != q.ID {
		t.Errorf("unexpected final frame %+v", gone)
	}
}

func TestServeWatch_UnknownQuest(t *testing.T) {
	h, fx, b := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateNewUser(ctx, "Watcher")
	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(t, "GET", "/quests/nope/watch", nil, u), "id", "nope")
	rec := testutil.NewRecorder()
	h.ServeWatch(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)

	if n := b.Hub().Subscribers(); n != 0 {
		t.Errorf("subscription leaked: %d open", n)
	}
}
