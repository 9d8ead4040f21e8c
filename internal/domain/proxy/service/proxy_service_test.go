package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chhengkhim/Junior-project-sub002/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method  string
	path    string
	query   string
	headers http.Header
	body    []byte
}

func newUpstream(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.headers = r.Header.Clone()
		got.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newService(base string) ProxyService {
	return NewProxyService(base, nil, metrics.NewMetricsCollector(prometheus.NewRegistry()))
}

func TestUpstreamURL(t *testing.T) {
	s := &proxyService{baseURL: "https://api.mindspeak.xyz/api"}

	assert.Equal(t, "https://api.mindspeak.xyz/api/posts", s.UpstreamURL("posts", ""))
	assert.Equal(t, "https://api.mindspeak.xyz/api/admin/posts/7/status", s.UpstreamURL("admin/posts/7/status", ""))
	assert.Equal(t, "https://api.mindspeak.xyz/api/faqs?search=exam+stress&page=2", s.UpstreamURL("faqs", "search=exam+stress&page=2"))
	assert.Equal(t, "https://api.mindspeak.xyz/api/files/a%20b", s.UpstreamURL("files/a b", ""))
}

func TestForwardGetPreservesQuery(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			srv, got := newUpstream(t, http.StatusOK, `{"ok":true}`)
			s := newService(srv.URL + "/api/")

			query := "status=pending&page=2&search=%E2%9C%93&tags=a&tags=b"
			out, err := s.Forward(context.Background(), Inbound{
				Method:   method,
				SubPath:  "admin/posts",
				RawQuery: query,
				Body:     strings.NewReader(`{"ignored":true}`),
			})
			require.NoError(t, err)

			assert.Equal(t, method, got.method)
			assert.Equal(t, "/api/admin/posts", got.path)
			assert.Equal(t, query, got.query)
			assert.Empty(t, got.body, "no body for %s", method)
			assert.Equal(t, "application/json", got.headers.Get("Accept"))
			assert.Equal(t, http.StatusOK, out.Status)
			assert.JSONEq(t, `{"ok":true}`, string(out.Body))
			assert.False(t, out.Raw)
		})
	}
}

func TestForwardJSONBody(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			srv, got := newUpstream(t, http.StatusCreated, `{"data":{"id":1}}`)
			s := newService(srv.URL)

			out, err := s.Forward(context.Background(), Inbound{
				Method:      method,
				SubPath:     "faqs",
				ContentType: "text/plain",
				Body:        strings.NewReader("{\n  \"question\": \"Where is counseling?\",\n  \"n\": 12345678901234567890\n}"),
			})
			require.NoError(t, err)

			assert.Equal(t, "application/json", got.headers.Get("Content-Type"))
			assert.Equal(t, `{"question":"Where is counseling?","n":12345678901234567890}`, string(got.body))
			assert.Equal(t, http.StatusCreated, out.Status)
		})
	}
}

func TestForwardInvalidJSONBecomesEmptyObject(t *testing.T) {
	for _, body := range []string{"not json", "", "{\"unterminated\":", "   "} {
		srv, got := newUpstream(t, http.StatusOK, `{}`)
		s := newService(srv.URL)

		_, err := s.Forward(context.Background(), Inbound{
			Method:      http.MethodPost,
			SubPath:     "posts",
			ContentType: "application/json",
			Body:        strings.NewReader(body),
		})
		require.NoError(t, err, "body %q", body)
		assert.Equal(t, "{}", string(got.body), "body %q", body)
	}
}

func TestForwardMultipartUnchanged(t *testing.T) {
	payload := "--XYZ\r\nContent-Disposition: form-data; name=\"title\"\r\n\r\nHello there\r\n" +
		"--XYZ\r\nContent-Disposition: form-data; name=\"image\"; filename=\"a.png\"\r\nContent-Type: image/png\r\n\r\n" +
		"\x89PNG\r\n\x1a\n\x00\x01not-json{\r\n--XYZ--\r\n"
	contentType := "multipart/form-data; boundary=XYZ"

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			srv, got := newUpstream(t, http.StatusOK, `{"ok":true}`)
			s := newService(srv.URL)

			_, err := s.Forward(context.Background(), Inbound{
				Method:        method,
				SubPath:       "posts",
				ContentType:   contentType,
				ContentLength: int64(len(payload)),
				Body:          strings.NewReader(payload),
			})
			require.NoError(t, err)

			assert.Equal(t, []byte(payload), got.body)
			assert.Equal(t, contentType, got.headers.Get("Content-Type"))
		})
	}
}

func TestForwardHeaders(t *testing.T) {
	srv, got := newUpstream(t, http.StatusOK, `[]`)
	s := newService(srv.URL)

	_, err := s.Forward(context.Background(), Inbound{
		Method:        http.MethodGet,
		SubPath:       "notifications",
		Authorization: "Bearer 12|abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer 12|abc", got.headers.Get("Authorization"))
	assert.Empty(t, got.headers.Get("Cookie"))

	_, err = s.Forward(context.Background(), Inbound{Method: http.MethodGet, SubPath: "notifications"})
	require.NoError(t, err)
	_, present := got.headers["Authorization"]
	assert.False(t, present)
}

func TestForwardWrapsNonJSON(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusInternalServerError, "<html>Server Error</html>")
	s := newService(srv.URL)

	out, err := s.Forward(context.Background(), Inbound{Method: http.MethodGet, SubPath: "posts"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, out.Status)
	assert.True(t, out.Raw)
	var wrapped map[string]string
	require.NoError(t, json.Unmarshal(out.Body, &wrapped))
	assert.Equal(t, "<html>Server Error</html>", wrapped["raw"])
}

func TestForwardUpstreamUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := newService(base).Forward(context.Background(), Inbound{Method: http.MethodGet, SubPath: "posts"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forward GET posts")
}
