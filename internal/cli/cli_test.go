package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teletext/internal/domain"
	"teletext/internal/handler"
)

type pageServer struct {
	mu       sync.Mutex
	requests []string
	failures int32
}

func newPageServer(t *testing.T, failures int32) (*pageServer, *httptest.Server) {
	t.Helper()
	ps := &pageServer{failures: failures}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.requests = append(ps.requests, r.URL.RequestURI())
		ps.mu.Unlock()

		if atomic.AddInt32(&ps.failures, -1) >= 0 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/page/")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handler.PageResponse{
			Success: true,
			Page: &domain.Page{
				ID:    id,
				Title: "Page " + id,
				Rows:  []string{"P" + id + " TELETEXT", "", "Hello"},
				Links: []domain.Link{{Label: "News", TargetPage: "200", Color: domain.LinkColorRed}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return ps, srv
}

func (ps *pageServer) Requests() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]string(nil), ps.requests...)
}

// resetFlags clears flag values left behind by earlier Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()
	require.NoError(t, getCmd.Flags().Set("json", "false"))
	param := getCmd.Flags().Lookup("param")
	require.NoError(t, param.Value.(interface{ Replace([]string) error }).Replace(nil))
	param.Changed = false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestGet_PrintsGrid(t *testing.T) {
	ps, srv := newPageServer(t, 0)

	out, err := execute(t, "get", "100", "--server", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, border)
	assert.Contains(t, out, "|P100 TELETEXT"+strings.Repeat(" ", domain.PageCols-len("P100 TELETEXT"))+"|")
	assert.Contains(t, out, "red")
	assert.Contains(t, out, "200")
	assert.Equal(t, []string{"/page/100"}, ps.Requests())
}

func TestGet_ForwardsParamsAndPrintsJSON(t *testing.T) {
	ps, srv := newPageServer(t, 0)

	out, err := execute(t, "get", "501", "--server", srv.URL, "-p", "q=tides", "--json")
	require.NoError(t, err)

	var page domain.Page
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, "501", page.ID)
	assert.Equal(t, []string{"/page/501?q=tides"}, ps.Requests())
}

func TestGet_RetriesServerErrors(t *testing.T) {
	ps, srv := newPageServer(t, 1)

	out, err := execute(t, "get", "203-3", "--server", srv.URL, "--attempts", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "P203-3 TELETEXT")
	assert.Len(t, ps.Requests(), 2)
}

func TestGet_InvalidPage(t *testing.T) {
	_, srv := newPageServer(t, 0)

	_, err := execute(t, "get", "42", "--server", srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"q=a=b", " date =2026-01-01"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q": "a=b", "date": "2026-01-01"}, params)

	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestRoute(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"route", "430"}, want: "adapter:  weather"},
		{args: []string{"route", "410"}, want: "adapter:  markets"},
		{args: []string{"route", "100"}, want: "magazine: 1"},
		{args: []string{"route"}, want: "420-449"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func newTestBrowser(srv *httptest.Server, out *bytes.Buffer) *browser {
	return &browser{
		client: newPageClient(srv.URL, time.Second, 1, nil),
		out:    out,
	}
}

func TestBrowse_CompletePageLoadsImmediately(t *testing.T) {
	ps, srv := newPageServer(t, 0)
	out := new(bytes.Buffer)

	err := newTestBrowser(srv, out).run(context.Background(), strings.NewReader("1\n0\n0\nq\n"), time.Minute, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"/page/100"}, ps.Requests())
	assert.Contains(t, out.String(), "P100 TELETEXT")
}

func TestBrowse_EmptyLineCommitsPartialEntry(t *testing.T) {
	ps, srv := newPageServer(t, 0)
	out := new(bytes.Buffer)

	err := newTestBrowser(srv, out).run(context.Background(), strings.NewReader("12\n\n2a0x1\nq\n"), time.Minute, "")
	require.NoError(t, err)

	assert.Contains(t, out.String(), `not a page number: "12"`)
	assert.Equal(t, []string{"/page/201"}, ps.Requests())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBrowse_QuietWindowCommits(t *testing.T) {
	ps, srv := newPageServer(t, 0)
	out := &lockedBuffer{}
	b := &browser{client: newPageClient(srv.URL, time.Second, 1, nil), out: out}

	r, w := io.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- b.run(context.Background(), r, 20*time.Millisecond, "300")
	}()

	_, err := w.Write([]byte("4\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `not a page number: "4"`)
	}, 2*time.Second, 10*time.Millisecond)

	_, err = w.Write([]byte("q\n"))
	require.NoError(t, err)
	require.NoError(t, <-done)
	_ = w.Close()

	assert.Equal(t, []string{"/page/300"}, ps.Requests())
}

func TestBrowse_FlushesOnEOF(t *testing.T) {
	_, srv := newPageServer(t, 0)
	out := new(bytes.Buffer)

	err := newTestBrowser(srv, out).run(context.Background(), strings.NewReader("20"), time.Minute, "")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `not a page number: "20"`)
}
