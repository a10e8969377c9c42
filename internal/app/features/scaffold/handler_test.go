package scaffold_test

import (
	"net/http"
	"testing"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/features/scaffold"
	scaffoldstore "github.com/dalemusser/sidequest/internal/app/store/scaffoldusers"
	"github.com/dalemusser/sidequest/internal/testutil"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	b := testutil.SetupTestBackend(t)
	logger := zap.NewNop()
	return scaffold.Routes(scaffold.NewHandler(scaffoldstore.New(b), apierrors.NewErrorLogger(logger), logger))
}

func do(t *testing.T, h http.Handler, method, target string, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewJSONRequest(t, method, target, body))
	return rec
}

func TestCRUD(t *testing.T) {
	h := newRouter(t)

	rec := do(t, h, "POST", "/", map[string]any{"name": "Ada", "id": 99})
	rec.AssertStatus(t, http.StatusCreated)
	var created map[string]any
	rec.Decode(t, &created)
	if created["id"] != float64(1) || created["name"] != "Ada" {
		t.Fatalf("unexpected create response %v", created)
	}

	do(t, h, "POST", "/", map[string]any{"name": "Grace"}).AssertStatus(t, http.StatusCreated)

	rec = do(t, h, "GET", "/", nil)
	rec.AssertStatus(t, http.StatusOK)
	var list []map[string]any
	rec.Decode(t, &list)
	if len(list) != 2 || list[1]["name"] != "Grace" || list[1]["id"] != float64(2) {
		t.Errorf("unexpected list %v", list)
	}

	rec = do(t, h, "PUT", "/1", map[string]any{"name": "Ada L.", "team": "red"})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"team":"red"`)

	rec = do(t, h, "GET", "/1", nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"name":"Ada L."`)

	rec = do(t, h, "DELETE", "/1", nil)
	rec.AssertStatus(t, http.StatusOK)
	var deleted map[string]any
	rec.Decode(t, &deleted)
	if deleted["id"] != float64(1) || deleted["name"] != "Ada L." {
		t.Errorf("unexpected delete response %v", deleted)
	}
	do(t, h, "GET", "/1", nil).AssertStatus(t, http.StatusNotFound)
}

func TestNotFound(t *testing.T) {
	h := newRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   any
	}{
		{"get missing", "GET", "/7", nil},
		{"update missing", "PUT", "/7", map[string]any{"name": "x"}},
		{"delete missing", "DELETE", "/7", nil},
		{"non-numeric id", "GET", "/abc", nil},
		{"zero id", "GET", "/0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			rec.AssertStatus(t, http.StatusNotFound)
			if code := rec.ErrorCode(t); code != apierrors.CodeNotFound {
				t.Errorf("error code = %q", code)
			}
		})
	}
}

func TestCreate_RejectsNonObject(t *testing.T) {
	h := newRouter(t)
	rec := do(t, h, "POST", "/", []string{"not", "an", "object"})
	rec.AssertStatus(t, http.StatusBadRequest)
}
