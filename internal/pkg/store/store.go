// Package store 客户端异步状态切片的公共部分：
// 按操作区分的 loading 标记、请求序号隔离、最近错误、订阅通知与卸载保护。
package store

import (
	"sort"
	"strings"
	"sync"
)

// 常用操作名
const (
	OpFetch    = "fetch"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpMarkRead = "markRead"
)

// Key 组合操作名与分区/实体，例如 fetch:pending、update:42
func Key(op string, parts ...string) string {
	if len(parts) == 0 {
		return op
	}
	return op + ":" + strings.Join(parts, ":")
}

// Ticket 一次请求的凭证，Commit 时据此判断响应是否过期
type Ticket struct {
	Op  string
	Seq uint64
}

// ViewState 列表视图的三种互斥状态（另加空结果）
type ViewState int

const (
	ViewReady ViewState = iota
	ViewLoading
	ViewError
	ViewEmpty
)

func (v ViewState) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	default:
		return "ready"
	}
}

// Base 被各领域切片嵌入；所有状态变更都在 mu 内完成
type Base struct {
	mu      sync.Mutex
	seq     map[string]uint64
	loading map[string]bool
	errOp   string
	errMsg  string
	closed  bool

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func (b *Base) initLocked() {
	if b.seq == nil {
		b.seq = make(map[string]uint64)
		b.loading = make(map[string]bool)
	}
}

// Begin 标记操作开始：loading=true，清除该操作先前的错误，分配新序号
func (b *Base) Begin(op string) Ticket {
	b.mu.Lock()
	b.initLocked()
	b.seq[op]++
	t := Ticket{Op: op, Seq: b.seq[op]}
	if !b.closed {
		b.loading[op] = true
		if b.errOp == op {
			b.errOp, b.errMsg = "", ""
		}
	}
	b.mu.Unlock()
	b.notify()
	return t
}

// Commit 写回一次请求的结果。
// 切片已关闭或已有更新的同名请求时返回 false，apply 不会执行。
// err 非空时记录 message 为最近错误，apply 不会执行。
func (b *Base) Commit(t Ticket, err error, message string, apply func()) bool {
	b.mu.Lock()
	b.initLocked()
	if b.closed || b.seq[t.Op] != t.Seq {
		b.mu.Unlock()
		return false
	}
	b.loading[t.Op] = false
	if err != nil {
		b.errOp, b.errMsg = t.Op, message
	} else if apply != nil {
		apply()
	}
	b.mu.Unlock()
	b.notify()
	return true
}

// Fail 记录未经网络的失败（例如本地校验），不改变 loading
func (b *Base) Fail(op, message string) {
	b.mu.Lock()
	if !b.closed {
		b.errOp, b.errMsg = op, message
	}
	b.mu.Unlock()
	b.notify()
}

// View 在锁内读取状态
func (b *Base) View(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

// Mutate 在锁内修改非网络状态（例如表单草稿），关闭后忽略
func (b *Base) Mutate(fn func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	fn()
	b.mu.Unlock()
	b.notify()
}

// Loading 某个操作是否进行中
func (b *Base) Loading(op string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading[op]
}

// LoadingOps 当前进行中的操作，按名称排序
func (b *Base) LoadingOps() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ops []string
	for op, on := range b.loading {
		if on {
			ops = append(ops, op)
		}
	}
	sort.Strings(ops)
	return ops
}

// Error 最近一次错误信息
func (b *Base) Error() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errMsg
}

// ErrorOp 产生最近错误的操作
func (b *Base) ErrorOp() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errOp
}

// ClearError 由调用方显式清除，例如卸载或用户重新输入
func (b *Base) ClearError() {
	b.mu.Lock()
	b.errOp, b.errMsg = "", ""
	b.mu.Unlock()
	b.notify()
}

// ViewState 根据某个操作的 loading/错误与是否为空计算视图状态
func (b *Base) ViewState(op string, empty bool) ViewState {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.loading[op]:
		return ViewLoading
	case b.errOp == op && b.errMsg != "":
		return ViewError
	case empty:
		return ViewEmpty
	default:
		return ViewReady
	}
}

// Close 视图卸载后调用，之后到达的响应全部丢弃
func (b *Base) Close() {
	b.mu.Lock()
	b.closed = true
	b.initLocked()
	for op := range b.loading {
		b.loading[op] = false
	}
	b.mu.Unlock()

	b.subMu.Lock()
	b.subs = nil
	b.subMu.Unlock()
}

// Closed 是否已关闭
func (b *Base) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Subscribe 每次状态变化后调用 fn，返回取消订阅函数
func (b *Base) Subscribe(fn func()) func() {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func())
	}
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Base) notify() {
	b.subMu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
