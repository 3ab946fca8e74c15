package ws

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestServeHTTPRejectsNonNumericPlatform(t *testing.T) {
	h := NewHandler(slog.New(slog.DiscardHandler), nil)

	r := chi.NewRouter()
	h.Mount(r)

	req := httptest.NewRequest("GET", "/ws/u1/conn/p1/not-a-number/tok", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}
