package service

import (
	"context"
	"strconv"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/post/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/post/repository"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/store"
	"github.com/chhengkhim/Junior-project-sub002/pkg/utils"
)

// Partition 某一审核状态下的帖子与分页
type Partition struct {
	Posts      []model.Post
	Pagination utils.Pagination
	Loaded     bool
}

// Filters 最近一次列表请求的参数
type Filters struct {
	Status model.Status
	Page   int
}

// State 帖子切片快照
type State struct {
	Partitions map[model.Status]Partition
	Loading    []string
	Error      string
	Filters    Filters
	Draft      model.CreateInput
}

type PostService interface {
	FetchByStatus(ctx context.Context, status model.Status, page int) store.Result[[]model.Post]
	Retry(ctx context.Context) store.Result[[]model.Post]
	Create(ctx context.Context, in model.CreateInput) store.Result[*model.Post]
	Approve(ctx context.Context, id int64) store.Result[*model.Post]
	Reject(ctx context.Context, id int64, reason string) store.Result[*model.Post]

	UpdateDraft(fn func(d *model.CreateInput))
	Partition(status model.Status) Partition
	State() State
	ViewState(status model.Status) store.ViewState
	Loading(op string) bool
	Error() string
	ClearError()
	Subscribe(fn func(State)) func()
	Close()
}

type postService struct {
	store.Base
	repo repository.PostRepository

	partitions map[model.Status]*Partition
	filters    Filters
	tabs       map[model.Status]Filters // 每个标签页最近一次的请求参数
	draft      model.CreateInput
}

func NewPostService(repo repository.PostRepository) PostService {
	return &postService{
		repo:       repo,
		partitions: make(map[model.Status]*Partition),
		tabs:       make(map[model.Status]Filters),
	}
}

// FetchKey 每个标签页独立的加载标记
func FetchKey(status model.Status) string {
	return store.Key(store.OpFetch, string(status))
}

// UpdateKey 单个帖子的审核操作
func UpdateKey(id int64) string {
	return store.Key(store.OpUpdate, strconv.FormatInt(id, 10))
}

func (s *postService) FetchByStatus(ctx context.Context, status model.Status, page int) store.Result[[]model.Post] {
	s.Mutate(func() {
		s.filters = Filters{Status: status, Page: page}
		s.tabs[status] = s.filters
	})

	t := s.Begin(FetchKey(status))
	posts, pagination, err := s.repo.ListByStatus(ctx, status, page)
	applied := s.Commit(t, err, store.Describe("load "+string(status)+" posts", err), func() {
		// 整体替换，渲染方不会看到半更新的分区
		s.partitions[status] = &Partition{Posts: posts, Pagination: pagination, Loaded: true}
	})
	return store.Settle(posts, err, applied)
}

// Retry 重发失败的那个标签页的请求；错误不是列表加载时重发最近一次请求
func (s *postService) Retry(ctx context.Context) store.Result[[]model.Post] {
	op := s.ErrorOp()
	var f Filters
	s.View(func() {
		f = s.filters
		for st, tf := range s.tabs {
			if FetchKey(st) == op {
				f = tf
				break
			}
		}
	})
	if f.Status == "" {
		f.Status = model.StatusPending
	}
	return s.FetchByStatus(ctx, f.Status, f.Page)
}

func (s *postService) Create(ctx context.Context, in model.CreateInput) store.Result[*model.Post] {
	if errs := in.Validate(); errs != nil {
		s.Fail(store.OpCreate, errs.Error())
		return store.Invalid[*model.Post](errs)
	}

	t := s.Begin(store.OpCreate)
	post, err := s.repo.Create(ctx, in)
	applied := s.Commit(t, err, store.Describe("create post", err), func() {
		if post != nil {
			st := post.Status
			if st == "" {
				st = model.StatusPending
			}
			// 新帖在前；未加载过的分区等首次拉取时再带上
			if p, ok := s.partitions[st]; ok && p.Loaded {
				p.Posts = append([]model.Post{*post}, p.Posts...)
			}
		}
		s.draft = model.CreateInput{}
	})
	return store.Settle(post, err, applied)
}

func (s *postService) Approve(ctx context.Context, id int64) store.Result[*model.Post] {
	return s.updateStatus(ctx, id, model.StatusUpdate{Status: model.StatusApproved})
}

func (s *postService) Reject(ctx context.Context, id int64, reason string) store.Result[*model.Post] {
	in := model.RejectInput{Reason: reason}
	if errs := in.Validate(); errs != nil {
		s.Fail(UpdateKey(id), errs.Error())
		return store.Invalid[*model.Post](errs)
	}
	return s.updateStatus(ctx, id, model.StatusUpdate{Status: model.StatusRejected, AdminNote: in.Reason})
}

func (s *postService) updateStatus(ctx context.Context, id int64, upd model.StatusUpdate) store.Result[*model.Post] {
	t := s.Begin(UpdateKey(id))
	updated, err := s.repo.UpdateStatus(ctx, id, upd)
	var result *model.Post
	applied := s.Commit(t, err, store.Describe("update post", err), func() {
		result = s.replaceLocked(id, upd, updated)
	})
	return store.Settle(result, err, applied)
}

// replaceLocked 原地替换字段，保持所在分区内的顺序
func (s *postService) replaceLocked(id int64, upd model.StatusUpdate, updated *model.Post) *model.Post {
	for _, p := range s.partitions {
		for i := range p.Posts {
			if p.Posts[i].ID != id {
				continue
			}
			if updated != nil {
				p.Posts[i] = *updated
			} else {
				p.Posts[i].Status = upd.Status
				p.Posts[i].AdminNote = upd.AdminNote
			}
			p.Posts[i].Normalize()
			out := p.Posts[i]
			return &out
		}
	}
	return updated
}

func (s *postService) UpdateDraft(fn func(d *model.CreateInput)) {
	s.Mutate(func() { fn(&s.draft) })
}

func (s *postService) Partition(status model.Status) Partition {
	var out Partition
	s.View(func() {
		if p, ok := s.partitions[status]; ok {
			out = copyPartition(p)
		}
	})
	return out
}

func copyPartition(p *Partition) Partition {
	posts := make([]model.Post, len(p.Posts))
	copy(posts, p.Posts)
	return Partition{Posts: posts, Pagination: p.Pagination, Loaded: p.Loaded}
}

func (s *postService) State() State {
	st := State{
		Loading: s.LoadingOps(),
		Error:   s.Error(),
	}
	s.View(func() {
		st.Partitions = make(map[model.Status]Partition, len(s.partitions))
		for k, p := range s.partitions {
			st.Partitions[k] = copyPartition(p)
		}
		st.Filters = s.filters
		st.Draft = s.draft
	})
	return st
}

func (s *postService) ViewState(status model.Status) store.ViewState {
	return s.Base.ViewState(FetchKey(status), len(s.Partition(status).Posts) == 0)
}

func (s *postService) Subscribe(fn func(State)) func() {
	return s.Base.Subscribe(func() { fn(s.State()) })
}
