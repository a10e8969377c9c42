package root

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	metricsstore "github.com/dalemusser/sidequest/internal/app/store/metrics"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTally(t *testing.T) {
	out, err := run(t, "tally", "a", "A")
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	var traits map[string]int
	if err := json.Unmarshal([]byte(out), &traits); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	for _, tag := range []string{"outdoorsy", "active", "social", "group"} {
		if traits[tag] != 1 {
			t.Errorf("trait %s = %d, want 1 (all: %v)", tag, traits[tag], traits)
		}
	}

	if _, err := run(t, "tally", "Z"); err == nil {
		t.Error("expected error for unknown option")
	}
}

func TestKeygen(t *testing.T) {
	out, err := run(t, "keygen")
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	if key := strings.TrimSpace(out); len(key) < 32 {
		t.Errorf("key too short: %q", key)
	}

	if _, err := run(t, "keygen", "--bytes", "8"); err == nil {
		t.Error("expected error for short key")
	}
}

func TestSeedSweepStats_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sq.db")
	store := []string{"--store-backend", "sqlite", "--sqlite-path", path}

	if _, err := run(t, append([]string{"seed", "--catalog"}, store...)...); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := run(t, append([]string{"sweep"}, store...)...); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	out, err := run(t, append([]string{"stats"}, store...)...)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var counts metricsstore.Counts
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if counts.Quests["open"] == 0 {
		t.Errorf("expected seeded open quests, got %v", counts.Quests)
	}
	if counts.Users != 0 {
		t.Errorf("users = %d", counts.Users)
	}
}

func TestRecommend_UnknownUser(t *testing.T) {
	if _, err := run(t, "recommend", "nobody", "--store-backend", "memory"); err == nil {
		t.Error("expected error for unknown user")
	}
}
