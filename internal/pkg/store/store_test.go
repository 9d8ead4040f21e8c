package store

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/pkg/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "fetch", Key(OpFetch))
	assert.Equal(t, "fetch:pending", Key(OpFetch, "pending"))
	assert.Equal(t, "update:post:9", Key(OpUpdate, "post", "9"))
}

func TestBeginCommitLifecycle(t *testing.T) {
	var b Base
	tk := b.Begin("fetch:pending")
	assert.True(t, b.Loading("fetch:pending"))
	assert.False(t, b.Loading("fetch:approved"))

	applied := false
	ok := b.Commit(tk, nil, "", func() { applied = true })
	assert.True(t, ok)
	assert.True(t, applied)
	assert.False(t, b.Loading("fetch:pending"))
}

func TestStaleResponseIsDropped(t *testing.T) {
	var b Base
	first := b.Begin(OpFetch)
	second := b.Begin(OpFetch)

	var value string
	assert.True(t, b.Commit(second, nil, "", func() { value = "second" }))
	assert.False(t, b.Commit(first, nil, "", func() { value = "first" }), "older response arrives late")
	assert.Equal(t, "second", value)
}

func TestStaleResponseKeepsLoadingOfNewerRequest(t *testing.T) {
	var b Base
	first := b.Begin(OpFetch)
	b.Begin(OpFetch)

	assert.False(t, b.Commit(first, nil, "", nil))
	assert.True(t, b.Loading(OpFetch), "newer request still in flight")
}

func TestErrorScopedToOperation(t *testing.T) {
	var b Base
	tk := b.Begin(OpFetch)
	b.Commit(tk, errors.New("boom"), "Failed to load", func() { t.Fatal("apply on error") })
	assert.Equal(t, "Failed to load", b.Error())
	assert.Equal(t, OpFetch, b.ErrorOp())

	// 无关操作成功不会清除错误
	other := b.Begin(OpCreate)
	b.Commit(other, nil, "", nil)
	assert.Equal(t, "Failed to load", b.Error())

	// 同一操作重新开始时清除
	b.Begin(OpFetch)
	assert.Empty(t, b.Error())
}

func TestClearError(t *testing.T) {
	var b Base
	b.Fail(OpCreate, "title is required")
	assert.Equal(t, "title is required", b.Error())
	b.ClearError()
	assert.Empty(t, b.Error())
}

func TestViewStatesAreExclusive(t *testing.T) {
	var b Base
	assert.Equal(t, ViewEmpty, b.ViewState(OpFetch, true))

	tk := b.Begin(OpFetch)
	assert.Equal(t, ViewLoading, b.ViewState(OpFetch, false))

	b.Commit(tk, errors.New("x"), "Failed to load", nil)
	assert.Equal(t, ViewError, b.ViewState(OpFetch, false))

	tk = b.Begin(OpFetch)
	assert.Equal(t, ViewLoading, b.ViewState(OpFetch, false), "retry hides the error")
	b.Commit(tk, nil, "", nil)
	assert.Equal(t, ViewReady, b.ViewState(OpFetch, false))
	assert.Equal(t, "ready", ViewReady.String())
}

func TestCloseDropsLateResponses(t *testing.T) {
	var b Base
	tk := b.Begin(OpFetch)
	b.Close()

	assert.False(t, b.Commit(tk, nil, "", func() { t.Fatal("applied after close") }))
	assert.False(t, b.Loading(OpFetch))
	assert.True(t, b.Closed())

	mutated := false
	b.Mutate(func() { mutated = true })
	assert.False(t, mutated)
}

func TestSubscribe(t *testing.T) {
	var b Base
	var calls int32
	unsubscribe := b.Subscribe(func() { atomic.AddInt32(&calls, 1) })

	tk := b.Begin(OpFetch)
	b.Commit(tk, nil, "", nil)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	unsubscribe()
	b.Begin(OpFetch)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLoadingOps(t *testing.T) {
	var b Base
	b.Begin("fetch:pending")
	b.Begin("create")
	assert.Equal(t, []string{"create", "fetch:pending"}, b.LoadingOps())
}

func TestResult(t *testing.T) {
	assert.True(t, Settle(1, nil, true).OK())
	assert.True(t, Settle(1, nil, false).Stale)
	assert.True(t, Settle(0, errors.New("x"), true).Failed())
	inv := Invalid[int](map[string]string{"title": "title is required"})
	assert.True(t, inv.Failed())
	assert.False(t, inv.OK())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Failed to load posts: please sign in again",
		Describe("load posts", &apiclient.APIError{Status: http.StatusUnauthorized}))
	assert.Equal(t, "Failed to load posts: The page field must be an integer.",
		Describe("load posts", &apiclient.APIError{Status: 422, Message: "The page field must be an integer."}))
	assert.Equal(t, "Failed to load posts (HTTP 500)",
		Describe("load posts", &apiclient.APIError{Status: 500}))
	assert.Equal(t, "Failed to load posts: request timed out",
		Describe("load posts", context.DeadlineExceeded))
	assert.Equal(t, "Failed to load posts: network error, please try again",
		Describe("load posts", errors.New("dial tcp: connection refused")))
	assert.Empty(t, Describe("load posts", nil))
}

func TestDebouncerRunsLastTrigger(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	got := make(chan string, 4)

	d.Trigger(func() { got <- "a" })
	d.Trigger(func() { got <- "ab" })
	d.Trigger(func() { got <- "abc" })

	select {
	case v := <-got:
		assert.Equal(t, "abc", v)
	case <-time.After(time.Second):
		require.Fail(t, "debounced call never ran")
	}

	select {
	case v := <-got:
		require.Failf(t, "unexpected extra call", "got %q", v)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var ran int32
	d.Trigger(func() { atomic.StoreInt32(&ran, 1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}
