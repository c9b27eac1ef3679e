package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cardninja/cardsync/internal/fetch"
)

func testAssembler(t *testing.T, handler http.Handler) (*Assembler, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAssembler(fetch.NewFetcher(5*time.Second, "cardsync-test")), srv
}

func TestAssembleNoLinks(t *testing.T) {
	a, _ := testAssembler(t, http.NotFoundHandler())

	out := a.Assemble(context.Background(), "main content", nil)

	assert.Equal(t, "main content", out)
}

func TestAssembleAppendsSubPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/benefits", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<body>Priority boarding and lounge access.</body>"))
	})
	a, srv := testAssembler(t, mux)

	out := a.Assemble(context.Background(), "Main card page.", []fetch.Link{
		{URL: srv.URL + "/benefits", Label: "Benefits"},
	})

	assert.True(t, strings.HasPrefix(out, "Main card page."))
	assert.Contains(t, out, "=== ADDITIONAL DETAILS FROM SUB-PAGES ===")
	assert.Contains(t, out, "--- Benefits ---")
	assert.Contains(t, out, "Priority boarding and lounge access.")
}

func TestAssembleTruncatesSubPageContribution(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fees", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<body>" + strings.Repeat("x", 3000) + "</body>"))
	})
	a, srv := testAssembler(t, mux)

	out := a.Assemble(context.Background(), "Main.", []fetch.Link{
		{URL: srv.URL + "/fees", Label: "Fee details"},
	})

	assert.Equal(t, subPageTextLimit, strings.Count(out, "x"))
}

func TestAssembleClampsTotalContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rewards", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<body>" + strings.Repeat("x", 3000) + "</body>"))
	})
	a, srv := testAssembler(t, mux)

	out := a.Assemble(context.Background(), strings.Repeat("m", 5500), []fetch.Link{
		{URL: srv.URL + "/rewards", Label: "Rewards"},
	})

	assert.Len(t, out, totalContentLimit)
}

func TestAssembleClampsMainContentWithoutLinks(t *testing.T) {
	a, _ := testAssembler(t, http.NotFoundHandler())

	out := a.Assemble(context.Background(), strings.Repeat("m", 9000), nil)

	assert.Len(t, out, totalContentLimit)
}

func TestAssembleSkipsFailedSubLinks(t *testing.T) {
	a, srv := testAssembler(t, http.NotFoundHandler())

	out := a.Assemble(context.Background(), "Main card page.", []fetch.Link{
		{URL: srv.URL + "/gone", Label: "Gone"},
	})

	assert.Equal(t, "Main card page.", out)
	assert.NotContains(t, out, "ADDITIONAL DETAILS")
}
