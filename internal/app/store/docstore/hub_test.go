package docstore_test

import (
	"testing"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"go.uber.org/zap"
)

func TestHub_RoutesByCollectionAndID(t *testing.T) {
	h := docstore.NewHub(zap.NewNop(), 4)
	one := h.Subscribe("quests", "q1")
	all := h.Subscribe("quests", "")
	other := h.Subscribe("users", "")
	defer one.Close()
	defer all.Close()
	defer other.Close()

	h.Publish(docstore.Event{Type: docstore.EventUpdated, Collection: "quests", ID: "q2"})
	h.Publish(docstore.Event{Type: docstore.EventUpdated, Collection: "quests", ID: "q1"})

	if got := len(one.Events()); got != 1 {
		t.Errorf("single-doc subscriber: got %d events, want 1", got)
	}
	if got := len(all.Events()); got != 2 {
		t.Errorf("collection subscriber: got %d events, want 2", got)
	}
	if got := len(other.Events()); got != 0 {
		t.Errorf("other collection: got %d events, want 0", got)
	}
}

func TestHub_DropsWhenFull(t *testing.T) {
	h := docstore.NewHub(zap.NewNop(), 1)
	s := h.Subscribe("quests", "")
	defer s.Close()

	for i := 0; i < 5; i++ {
		h.Publish(docstore.Event{Collection: "quests", ID: "q"})
	}
	if got := len(s.Events()); got != 1 {
		t.Errorf("got %d buffered events, want 1", got)
	}
}

func TestHub_CloseEndsSubscriptions(t *testing.T) {
	h := docstore.NewHub(zap.NewNop(), 1)
	s := h.Subscribe("quests", "q1")
	h.Close()

	if _, ok := <-s.Events(); ok {
		t.Error("expected closed channel after hub Close")
	}
	// Closing again is harmless.
	s.Close()

	late := h.Subscribe("quests", "q1")
	if _, ok := <-late.Events(); ok {
		t.Error("subscribe after Close should return a closed subscription")
	}
	if h.Subscribers() != 0 {
		t.Errorf("Subscribers: got %d, want 0", h.Subscribers())
	}
}
