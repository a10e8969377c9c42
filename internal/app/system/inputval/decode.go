// internal/app/system/inputval/decode.go
package inputval

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/sidequest/internal/domain/questerr"
)

// Decode reads a JSON body of at most maxBytes into v, then validates it.
// Any failure comes back as a questerr.ErrInvalid with a user-facing message.
// An empty body decodes as {}.
func Decode(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return questerr.Invalid("Request body is too large.")
		}
		return questerr.Invalid("Request body must be valid JSON.")
	}
	if res := Validate(v); res.HasErrors() {
		return questerr.Invalid(res.First())
	}
	return nil
}
