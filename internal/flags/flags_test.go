package flags

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/cache"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
)

func newResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewResolver(adapter.NewHTTPClient(time.Second), cache.NewMemoryStore(adapter.NewClock()), srv.URL, time.Hour, "<:totw:1>")
}

func TestFlag_LooksUpAndCaches(t *testing.T) {
	var calls atomic.Int32
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/France", req.URL.Path)
		_, _ = w.Write([]byte(`[{"altSpellings":["FR","French Republic"]}]`))
	})

	assert.Equal(t, "🇫🇷", r.Flag(context.Background(), "France"))
	assert.Equal(t, "🇫🇷", r.Flag(context.Background(), "france"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFlag_SpecialCases(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		t.Errorf("unexpected lookup %s", req.URL.Path)
	})

	tests := map[string]string{
		domain.NationTOTW:      "<:totw:1>",
		domain.NationGoldFoder: "✨",
		"England":              ":england:",
		"Korea Republic":       ":flag_kr:",
		"Saudi Arabia":         ":flag_sa:",
		"":                     Unknown,
	}
	for nation, want := range tests {
		assert.Equal(t, want, r.Flag(context.Background(), nation), nation)
	}
}

func TestFlag_LookupFailure(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	assert.Equal(t, Unknown, r.Flag(context.Background(), "Atlantis"))
}

func TestRegionalIndicators(t *testing.T) {
	flag, err := RegionalIndicators("br")
	require.NoError(t, err)
	assert.Equal(t, "🇧🇷", flag)

	_, err = RegionalIndicators("BRA")
	assert.Error(t, err)
	_, err = RegionalIndicators("1A")
	assert.Error(t, err)
}
