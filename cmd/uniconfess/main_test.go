package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/output"
	"github.com/chhengkhim/Junior-project-sub002/pkg/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	app *app
	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T, h http.HandlerFunc) *harness {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	var out, errOut bytes.Buffer
	return &harness{
		app: newApp(apiclient.New(srv.URL, "admin-token", time.Second), &out, &errOut),
		out: &out,
		err: &errOut,
	}
}

func (h *harness) run(args ...string) error {
	return h.app.run(context.Background(), args)
}

func TestUsage(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	err := h.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uniconfess posts list")

	require.NoError(t, h.run("help"))
	assert.Contains(t, h.out.String(), "uniconfess messages status")
}

func TestPostsListTable(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/posts", r.URL.Path)
		assert.Equal(t, "rejected", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"success":true,"data":{"data":[
			{"id":7,"title":"Exam stress","content":"...","tags":["study","stress"],"status":"rejected","admin_note":"Please remove names","is_anonymous":true,"created_at":"2026-03-01T10:00:00Z"}
		],"current_page":1,"last_page":2}}`)
	})

	require.NoError(t, h.run("posts", "list", "--status", "rejected", "--format", "table"))
	out := h.out.String()
	assert.Contains(t, out, "NOTE")
	assert.Contains(t, out, "Exam stress")
	assert.Contains(t, out, "study,stress")
	assert.Contains(t, out, "anonymous")
	assert.Contains(t, out, "Please remove names")
	assert.Contains(t, out, "page 1 of 2")
}

func TestPostsListEmpty(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"data":[],"current_page":1,"last_page":1}}`)
	})

	require.NoError(t, h.run("posts", "list", "--format", "table"))
	assert.Equal(t, "Nothing found.\n", h.out.String())
}

func TestPostsListErrorShowsRetry(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"message":"Server Error"}`)
	})

	err := h.run("posts", "list", "--status", "approved", "--page", "3", "--format", "json")
	assert.ErrorIs(t, err, output.ErrFailed)
	assert.Empty(t, h.out.String())
	assert.Contains(t, h.err.String(), "Server Error")
	assert.Contains(t, h.err.String(), "uniconfess posts list --status approved --page 3")
}

func TestListErrorRetryKeepsFlags(t *testing.T) {
	cases := []struct {
		name  string
		args  []string
		retry string
	}{
		{
			name:  "notifications",
			args:  []string{"notifications", "list", "--type", "like", "--read", "unread", "--search", "exam", "--page", "2"},
			retry: `uniconfess notifications list --type like --read unread --search "exam" --page 2`,
		},
		{
			name:  "notifications read-all",
			args:  []string{"notifications", "read-all", "--type", "comment"},
			retry: `uniconfess notifications read-all --type comment --read all --search "" --page 1`,
		},
		{
			name:  "faqs",
			args:  []string{"faqs", "list", "--search", "counseling hours"},
			retry: `uniconfess faqs list --search "counseling hours"`,
		},
		{
			name:  "messages",
			args:  []string{"messages", "list", "--status", "unread", "--search", "dara", "--order", "oldest"},
			retry: `uniconfess messages list --status unread --search "dara" --order oldest`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"success":false,"message":"Server Error"}`)
			})

			err := h.run(tc.args...)
			assert.ErrorIs(t, err, output.ErrFailed)
			assert.Contains(t, h.err.String(), "Server Error")
			assert.Contains(t, h.err.String(), "retry with: "+tc.retry)
		})
	}
}

func TestPostsCreateInvalidNeverCallsBackend(t *testing.T) {
	var calls int32
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	err := h.run("posts", "create", "--title", "abcd", "--content", "123456789")
	assert.ErrorIs(t, err, output.ErrFailed)
	assert.Contains(t, h.err.String(), "title")
	assert.Contains(t, h.err.String(), "content")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestPostsCreateWithImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "cat.png")
	require.NoError(t, os.WriteFile(img, []byte("png-bytes"), 0o600))

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "abcde", r.FormValue("title"))
		assert.Equal(t, []string{"a", "b"}, r.MultipartForm.Value["tags[]"])
		assert.Equal(t, "1", r.FormValue("is_anonymous"))
		assert.Equal(t, "a cat", r.FormValue("image_alt_text"))
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "cat.png", hdr.Filename)
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":11,"title":"abcde","status":"pending"}}`)
	})

	err := h.run("posts", "create",
		"--title", "abcde", "--content", "1234567890",
		"--tags", "a,b", "--anonymous",
		"--image", img, "--alt", "a cat",
		"--format", "table")
	require.NoError(t, err)
	assert.Equal(t, "post 11 submitted (pending)\n", h.out.String())
}

func TestPostsRejectBlankReason(t *testing.T) {
	var calls int32
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	err := h.run("posts", "reject", "4", "--reason", "   ")
	assert.ErrorIs(t, err, output.ErrFailed)
	assert.Contains(t, h.err.String(), "reason")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestPostsApprove(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/admin/posts/4/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "approved", body["status"])
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":4,"status":"approved"}}`)
	})

	require.NoError(t, h.run("posts", "approve", "4", "--format", "json"))
	assert.Contains(t, h.out.String(), `"status": "approved"`)
}

func TestNotificationsReadAll(t *testing.T) {
	var marked []int64
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notifications":
			assert.Equal(t, "like", r.URL.Query().Get("type"))
			_, _ = io.WriteString(w, `{"success":true,"data":{"data":[
				{"id":1,"type":"like","is_read":false},
				{"id":2,"type":"like","is_read":true},
				{"id":3,"type":"like","is_read":false}
			],"current_page":1,"last_page":1}}`)
		case "/notifications/mark-read":
			var body struct {
				IDs []int64 `json:"ids"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			marked = body.IDs
			_, _ = io.WriteString(w, `{"success":true}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	require.NoError(t, h.run("notifications", "read-all", "--type", "like", "--format", "table"))
	assert.Equal(t, []int64{1, 3}, marked)
	assert.Equal(t, "marked 2 notification(s) read, 0 unread\n", h.out.String())
}

func TestNotificationsDismiss(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications/mark-read", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	require.NoError(t, h.run("notifications", "dismiss", "9", "--format", "json"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	assert.Equal(t, true, got["substituted"])
	assert.Equal(t, "mark-read", got["action"])
}

func TestNotificationsListRejectsUnknownType(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	err := h.run("notifications", "list", "--type", "poke")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--type")
}

func TestFAQsListStatic(t *testing.T) {
	var calls int32
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	require.NoError(t, h.run("faqs", "list", "--static", "--search", "anonymous", "--format", "table"))
	assert.Contains(t, h.out.String(), "QUESTION")
	assert.Contains(t, strings.ToLower(h.out.String()), "anonymous")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFAQsCreateRequiresFields(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	err := h.run("faqs", "create", "--question", "Why?", "--answer", " ")
	assert.ErrorIs(t, err, output.ErrFailed)
	assert.Contains(t, h.err.String(), "answer")
}

func TestMessagesListFiltersLocally(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/contact-messages", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"success":true,"data":{"data":[
			{"id":1,"senderName":"Sokha","senderEmail":"s@example.com","subject":"Login","status":"unread","receivedDate":"2026-01-02T00:00:00Z"},
			{"id":2,"senderName":"Dara","senderEmail":"d@example.com","subject":"Thanks","status":"resolved","receivedDate":"2026-01-03T00:00:00Z"}
		],"current_page":1,"last_page":1}}`)
	})

	require.NoError(t, h.run("messages", "list", "--status", "unread", "--format", "json"))
	var got struct {
		Messages []struct {
			ID int64 `json:"id"`
		} `json:"messages"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	require.Len(t, got.Messages, 1)
	assert.Equal(t, int64(1), got.Messages[0].ID)
	assert.Equal(t, 1, got.Counts["resolved"])
}

func TestMessagesStatus(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/contact-messages/2/status", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"message":"Status updated"}`)
	})

	require.NoError(t, h.run("messages", "status", "2", "Read", "--format", "table"))
	assert.Equal(t, "message 2 marked read\n", h.out.String())
}

func TestMessagesStatusInvalid(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	err := h.run("messages", "status", "2", "archived")
	assert.ErrorIs(t, err, output.ErrFailed)
	assert.Contains(t, h.err.String(), "status")
}
