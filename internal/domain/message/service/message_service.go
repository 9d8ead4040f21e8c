package service

import (
	"context"
	"strconv"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/message/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/message/repository"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/store"
	"github.com/chhengkhim/Junior-project-sub002/pkg/filter"
)

// Query 本地筛选与排序条件，Status 为空或 all 表示全部
type Query struct {
	Status string
	Search string
	Order  filter.Order
}

// State 联系消息切片快照
type State struct {
	Items   []model.Message
	Loading []string
	Error   string
	Counts  map[model.Status]int
}

type MessageService interface {
	Fetch(ctx context.Context) store.Result[[]model.Message]
	Retry(ctx context.Context) store.Result[[]model.Message]
	SetStatus(ctx context.Context, id int64, status model.Status) store.Result[*model.Message]

	Items() []model.Message
	View(q Query) []model.Message
	Counts() map[model.Status]int
	State() State
	ViewState(q Query) store.ViewState
	Loading(op string) bool
	Error() string
	ClearError()
	Subscribe(fn func(State)) func()
	Close()
}

type messageService struct {
	store.Base
	repo repository.MessageRepository

	items []model.Message
}

func NewMessageService(repo repository.MessageRepository) MessageService {
	return &messageService{repo: repo}
}

// StatusKey 单条消息的状态修改
func StatusKey(id int64) string {
	return store.Key(store.OpUpdate, strconv.FormatInt(id, 10))
}

func (s *messageService) Fetch(ctx context.Context) store.Result[[]model.Message] {
	t := s.Begin(store.OpFetch)
	items, err := s.repo.List(ctx)
	applied := s.Commit(t, err, store.Describe("load messages", err), func() {
		s.items = items
	})
	return store.Settle(items, err, applied)
}

// Retry 列表接口没有参数，等同于重新拉取
func (s *messageService) Retry(ctx context.Context) store.Result[[]model.Message] {
	return s.Fetch(ctx)
}

func (s *messageService) SetStatus(ctx context.Context, id int64, status model.Status) store.Result[*model.Message] {
	key := StatusKey(id)
	if errs := (model.StatusUpdate{Status: status}).Validate(); errs != nil {
		s.Fail(key, errs.Error())
		return store.Invalid[*model.Message](errs)
	}

	t := s.Begin(key)
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	var result *model.Message
	applied := s.Commit(t, err, store.Describe("update message", err), func() {
		for i := range s.items {
			if s.items[i].ID != id {
				continue
			}
			if updated != nil {
				s.items[i] = *updated
			} else {
				s.items[i].Status = status
			}
			m := s.items[i]
			result = &m
			return
		}
		result = updated
	})
	return store.Settle(result, err, applied)
}

func (s *messageService) Items() []model.Message {
	var out []model.Message
	s.Base.View(func() { out = append(out, s.items...) })
	return out
}

// View 先筛选再排序，不修改切片中的集合
func (s *messageService) View(q Query) []model.Message {
	matched := filter.Apply(s.Items(), filter.Criteria[model.Message]{
		Status:   q.Status,
		Search:   q.Search,
		StatusOf: func(m model.Message) string { return string(m.Status) },
		Fields:   model.SearchFields,
	})
	if q.Order == "" {
		return matched
	}
	return filter.SortByTime(matched, q.Order, func(m model.Message) time.Time { return m.ReceivedDate })
}

func (s *messageService) Counts() map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, st := range model.Statuses {
		counts[st] = 0
	}
	for _, m := range s.Items() {
		counts[m.Status]++
	}
	return counts
}

func (s *messageService) State() State {
	return State{
		Items:   s.Items(),
		Loading: s.LoadingOps(),
		Error:   s.Error(),
		Counts:  s.Counts(),
	}
}

// ViewState 空状态按筛选后的结果判断
func (s *messageService) ViewState(q Query) store.ViewState {
	return s.Base.ViewState(store.OpFetch, len(s.View(q)) == 0)
}

func (s *messageService) Subscribe(fn func(State)) func() {
	return s.Base.Subscribe(func() { fn(s.State()) })
}
