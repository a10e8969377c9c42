package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/quests", 6},
		{"/quests?top=3", 3},
		{"/quests?top=0", 6},
		{"/quests?top=-2", 6},
		{"/quests?top=abc", 6},
		{"/quests?top=500", MaxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := ParseLimit(r, "top", 6); got != tt.want {
				t.Errorf("ParseLimit(%q) = %d, want %d", tt.url, got, tt.want)
			}
		})
	}
}
