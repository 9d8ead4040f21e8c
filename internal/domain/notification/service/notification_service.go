package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/notification/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/notification/repository"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/store"
	"github.com/chhengkhim/Junior-project-sub002/pkg/utils"
)

// DismissResult 后端没有删除接口，忽略通知以标记已读代替，Substituted 恒为 true
type DismissResult struct {
	store.Result[int64]
	Substituted bool
}

// State 通知切片快照
type State struct {
	Items       []model.Notification
	Pagination  utils.Pagination
	Loading     []string
	Error       string
	Filters     model.Filters
	UnreadCount int
}

type NotificationService interface {
	Fetch(ctx context.Context, f model.Filters) store.Result[[]model.Notification]
	Retry(ctx context.Context) store.Result[[]model.Notification]
	Search(ctx context.Context, term string)
	MarkRead(ctx context.Context, ids ...int64) store.Result[[]int64]
	MarkAllRead(ctx context.Context) store.Result[[]int64]
	Dismiss(ctx context.Context, id int64) DismissResult

	Items() []model.Notification
	UnreadCount() int
	State() State
	ViewState() store.ViewState
	Loading(op string) bool
	Error() string
	ClearError()
	Subscribe(fn func(State)) func()
	Close()
}

type Option func(*notificationService)

// WithQuietPeriod 覆盖搜索防抖时长
func WithQuietPeriod(d time.Duration) Option {
	return func(s *notificationService) { s.search = store.NewDebouncer(d) }
}

type notificationService struct {
	store.Base
	repo   repository.NotificationRepository
	search *store.Debouncer

	items      []model.Notification
	pagination utils.Pagination
	filters    model.Filters
}

func NewNotificationService(repo repository.NotificationRepository, opts ...Option) NotificationService {
	s := &notificationService{
		repo:   repo,
		search: store.NewDebouncer(store.SearchQuietPeriod),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkReadKey 同一组 id 的标记请求共用一个 loading 标记
func MarkReadKey(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return store.Key(store.OpMarkRead, strings.Join(parts, ","))
}

func (s *notificationService) Fetch(ctx context.Context, f model.Filters) store.Result[[]model.Notification] {
	s.Mutate(func() { s.filters = f })

	t := s.Begin(store.OpFetch)
	items, pagination, err := s.repo.List(ctx, f)
	applied := s.Commit(t, err, store.Describe("load notifications", err), func() {
		s.items = items
		s.pagination = pagination
	})
	return store.Settle(items, err, applied)
}

func (s *notificationService) Retry(ctx context.Context) store.Result[[]model.Notification] {
	var f model.Filters
	s.View(func() { f = s.filters })
	return s.Fetch(ctx, f)
}

// Search 静默期结束后按新关键字从第一页重新拉取。
// 其余筛选条件取触发时的最新值。
func (s *notificationService) Search(ctx context.Context, term string) {
	s.search.Trigger(func() {
		var f model.Filters
		s.View(func() { f = s.filters })
		f.Search = term
		f.Page = 1
		s.Fetch(ctx, f)
	})
}

func (s *notificationService) MarkRead(ctx context.Context, ids ...int64) store.Result[[]int64] {
	if len(ids) == 0 {
		return store.Result[[]int64]{Skipped: true}
	}

	t := s.Begin(MarkReadKey(ids))
	err := s.repo.MarkRead(ctx, ids)
	applied := s.Commit(t, err, store.Describe("mark notifications read", err), func() {
		marked := make(map[int64]bool, len(ids))
		for _, id := range ids {
			marked[id] = true
		}
		for i := range s.items {
			if marked[s.items[i].ID] {
				s.items[i].IsRead = true
			}
		}
	})
	return store.Settle(ids, err, applied)
}

// MarkAllRead 只标记当前视图中未读的通知，没有未读时不发请求
func (s *notificationService) MarkAllRead(ctx context.Context) store.Result[[]int64] {
	var ids []int64
	s.View(func() { ids = model.UnreadIDs(s.items) })
	return s.MarkRead(ctx, ids...)
}

func (s *notificationService) Dismiss(ctx context.Context, id int64) DismissResult {
	res := s.MarkRead(ctx, id)
	out := DismissResult{Substituted: true}
	out.Err, out.Stale, out.Skipped = res.Err, res.Stale, res.Skipped
	out.Value = id
	return out
}

func (s *notificationService) Items() []model.Notification {
	var out []model.Notification
	s.View(func() { out = append(out, s.items...) })
	return out
}

func (s *notificationService) UnreadCount() int {
	var n int
	s.View(func() { n = model.CountUnread(s.items) })
	return n
}

func (s *notificationService) State() State {
	st := State{Loading: s.LoadingOps(), Error: s.Error()}
	s.View(func() {
		st.Items = append([]model.Notification(nil), s.items...)
		st.Pagination = s.pagination
		st.Filters = s.filters
		st.UnreadCount = model.CountUnread(s.items)
	})
	return st
}

func (s *notificationService) ViewState() store.ViewState {
	return s.Base.ViewState(store.OpFetch, len(s.Items()) == 0)
}

func (s *notificationService) Subscribe(fn func(State)) func() {
	return s.Base.Subscribe(func() { fn(s.State()) })
}

func (s *notificationService) Close() {
	s.search.Stop()
	s.Base.Close()
}
