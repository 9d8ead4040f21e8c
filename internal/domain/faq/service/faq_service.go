package service

import (
	"context"
	"strconv"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/faq/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/faq/repository"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/store"
)

const readOnlyMessage = "FAQs cannot be edited from this view"

// State FAQ 切片快照
type State struct {
	Items    []model.FAQ
	Loading  []string
	Error    string
	Search   string
	ReadOnly bool
}

type FAQService interface {
	Fetch(ctx context.Context, search string) store.Result[[]model.FAQ]
	Retry(ctx context.Context) store.Result[[]model.FAQ]
	Search(ctx context.Context, term string)
	Create(ctx context.Context, in model.Input) store.Result[*model.FAQ]
	Update(ctx context.Context, id int64, in model.Input) store.Result[*model.FAQ]
	Delete(ctx context.Context, id int64) store.Result[int64]

	Items() []model.FAQ
	ReadOnly() bool
	State() State
	ViewState() store.ViewState
	Loading(op string) bool
	Error() string
	ClearError()
	Subscribe(fn func(State)) func()
	Close()
}

type Option func(*faqService)

// WithQuietPeriod 覆盖搜索防抖时长
func WithQuietPeriod(d time.Duration) Option {
	return func(s *faqService) { s.search = store.NewDebouncer(d) }
}

type faqService struct {
	store.Base
	repo   repository.FAQRepository
	search *store.Debouncer

	items []model.FAQ
	term  string
}

// NewFAQService 管理端传入远程仓库，用户端传入内置数据仓库
func NewFAQService(repo repository.FAQRepository, opts ...Option) FAQService {
	s := &faqService{
		repo:   repo,
		search: store.NewDebouncer(store.SearchQuietPeriod),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func itemKey(op string, id int64) string {
	return store.Key(op, strconv.FormatInt(id, 10))
}

func (s *faqService) Fetch(ctx context.Context, search string) store.Result[[]model.FAQ] {
	s.Mutate(func() { s.term = search })

	t := s.Begin(store.OpFetch)
	items, err := s.repo.List(ctx, search)
	applied := s.Commit(t, err, store.Describe("load FAQs", err), func() {
		s.items = items
	})
	return store.Settle(items, err, applied)
}

func (s *faqService) Retry(ctx context.Context) store.Result[[]model.FAQ] {
	var term string
	s.View(func() { term = s.term })
	return s.Fetch(ctx, term)
}

func (s *faqService) Search(ctx context.Context, term string) {
	s.search.Trigger(func() { s.Fetch(ctx, term) })
}

func (s *faqService) Create(ctx context.Context, in model.Input) store.Result[*model.FAQ] {
	if res, blocked := s.guard(store.OpCreate, &in); blocked {
		return res
	}

	t := s.Begin(store.OpCreate)
	faq, err := s.repo.Create(ctx, in)
	applied := s.Commit(t, err, store.Describe("create FAQ", err), func() {
		if faq != nil {
			s.items = append([]model.FAQ{*faq}, s.items...)
		}
	})
	return store.Settle(faq, err, applied)
}

func (s *faqService) Update(ctx context.Context, id int64, in model.Input) store.Result[*model.FAQ] {
	key := itemKey(store.OpUpdate, id)
	if res, blocked := s.guard(key, &in); blocked {
		return res
	}

	t := s.Begin(key)
	faq, err := s.repo.Update(ctx, id, in)
	applied := s.Commit(t, err, store.Describe("update FAQ", err), func() {
		for i := range s.items {
			if s.items[i].ID == id && faq != nil {
				s.items[i] = *faq
				return
			}
		}
	})
	return store.Settle(faq, err, applied)
}

func (s *faqService) Delete(ctx context.Context, id int64) store.Result[int64] {
	key := itemKey(store.OpDelete, id)
	if s.repo.ReadOnly() {
		s.Fail(key, readOnlyMessage)
		return store.Result[int64]{Value: id, Err: repository.ErrReadOnly}
	}

	t := s.Begin(key)
	err := s.repo.Delete(ctx, id)
	applied := s.Commit(t, err, store.Describe("delete FAQ", err), func() {
		kept := s.items[:0:0]
		for _, f := range s.items {
			if f.ID != id {
				kept = append(kept, f)
			}
		}
		s.items = kept
	})
	return store.Settle(id, err, applied)
}

// guard 只读数据源与本地校验失败时不发请求
func (s *faqService) guard(op string, in *model.Input) (store.Result[*model.FAQ], bool) {
	if s.repo.ReadOnly() {
		s.Fail(op, readOnlyMessage)
		return store.Result[*model.FAQ]{Err: repository.ErrReadOnly}, true
	}
	if errs := in.Validate(); errs != nil {
		s.Fail(op, errs.Error())
		return store.Invalid[*model.FAQ](errs), true
	}
	return store.Result[*model.FAQ]{}, false
}

func (s *faqService) Items() []model.FAQ {
	var out []model.FAQ
	s.View(func() { out = append(out, s.items...) })
	return out
}

func (s *faqService) ReadOnly() bool { return s.repo.ReadOnly() }

func (s *faqService) State() State {
	st := State{Loading: s.LoadingOps(), Error: s.Error(), ReadOnly: s.repo.ReadOnly()}
	s.View(func() {
		st.Items = append([]model.FAQ(nil), s.items...)
		st.Search = s.term
	})
	return st
}

func (s *faqService) ViewState() store.ViewState {
	return s.Base.ViewState(store.OpFetch, len(s.Items()) == 0)
}

func (s *faqService) Subscribe(fn func(State)) func() {
	return s.Base.Subscribe(func() { fn(s.State()) })
}

func (s *faqService) Close() {
	s.search.Stop()
	s.Base.Close()
}
