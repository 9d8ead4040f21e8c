package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/message/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/store"
	"github.com/chhengkhim/Junior-project-sub002/pkg/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository is a mock of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) List(ctx context.Context) ([]model.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockMessageRepository) UpdateStatus(ctx context.Context, id int64, status model.Status) (*model.Message, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

var bg = context.Background()

func day(d int) time.Time {
	return time.Date(2026, 1, d, 12, 0, 0, 0, time.UTC)
}

func inbox() []model.Message {
	return []model.Message{
		{ID: 1, SenderName: "Sokha", SenderEmail: "sokha@example.com", Subject: "Login issue", Status: model.StatusUnread, ReceivedDate: day(2)},
		{ID: 2, SenderName: "Vanna", SenderEmail: "vanna@example.com", Subject: "Thanks", Message: "Great app", Status: model.StatusResolved, ReceivedDate: day(5)},
		{ID: 3, SenderName: "Dara", SenderEmail: "dara@uni.edu", Subject: "Report", Message: "LOGIN page broken", Status: model.StatusRead, ReceivedDate: day(1)},
	}
}

func ids(items []model.Message) []int64 {
	out := make([]int64, len(items))
	for i, m := range items {
		out[i] = m.ID
	}
	return out
}

func loaded(t *testing.T, repo *MockMessageRepository) MessageService {
	t.Helper()
	repo.On("List", mock.Anything).Return(inbox(), nil).Once()
	svc := NewMessageService(repo)
	assert.True(t, svc.Fetch(bg).OK())
	return svc
}

func TestViewAllUnfilteredKeepsOrder(t *testing.T) {
	svc := loaded(t, new(MockMessageRepository))
	assert.Equal(t, []int64{1, 2, 3}, ids(svc.View(Query{Status: filter.StatusAll})))
}

func TestViewFilterAndSearch(t *testing.T) {
	svc := loaded(t, new(MockMessageRepository))

	assert.Equal(t, []int64{1, 3}, ids(svc.View(Query{Search: "login"})))
	assert.Equal(t, []int64{3}, ids(svc.View(Query{Status: "read", Search: "login"})))
	assert.Equal(t, []int64{3}, ids(svc.View(Query{Search: "UNI.EDU"})))
	assert.Empty(t, svc.View(Query{Search: "nothing"}))
	assert.Equal(t, store.ViewEmpty, svc.ViewState(Query{Search: "nothing"}))
}

func TestViewSortOrders(t *testing.T) {
	svc := loaded(t, new(MockMessageRepository))

	newest := ids(svc.View(Query{Order: filter.Newest}))
	oldest := ids(svc.View(Query{Order: filter.Oldest}))
	assert.Equal(t, []int64{2, 1, 3}, newest)
	assert.Equal(t, []int64{3, 1, 2}, oldest)
}

func TestCounts(t *testing.T) {
	svc := loaded(t, new(MockMessageRepository))
	assert.Equal(t, map[model.Status]int{
		model.StatusUnread:   1,
		model.StatusRead:     1,
		model.StatusResolved: 1,
	}, svc.Counts())
}

func TestSetStatusAnyTransition(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := loaded(t, repo)
	repo.On("UpdateStatus", mock.Anything, int64(2), model.StatusUnread).Return(nil, nil)

	res := svc.SetStatus(bg, 2, model.StatusUnread)
	assert.True(t, res.OK())
	if assert.NotNil(t, res.Value) {
		assert.Equal(t, model.StatusUnread, res.Value.Status)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids(svc.Items()))
	assert.Equal(t, 2, svc.Counts()[model.StatusUnread])
}

func TestSetStatusInvalid(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := loaded(t, repo)

	res := svc.SetStatus(bg, 1, "archived")
	assert.Contains(t, res.Invalid, "status")
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatusFailure(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := loaded(t, repo)
	repo.On("UpdateStatus", mock.Anything, int64(1), model.StatusResolved).Return(nil, errors.New("boom"))

	res := svc.SetStatus(bg, 1, model.StatusResolved)
	assert.True(t, res.Failed())
	assert.Equal(t, model.StatusUnread, svc.Items()[0].Status)
	assert.NotEmpty(t, svc.Error())
	assert.False(t, svc.Loading(StatusKey(1)))
}

func TestFetchFailureRendersError(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := NewMessageService(repo)
	repo.On("List", mock.Anything).Return([]model.Message(nil), errors.New("offline")).Once()
	repo.On("List", mock.Anything).Return(inbox(), nil).Once()

	svc.Fetch(bg)
	assert.Equal(t, store.ViewError, svc.ViewState(Query{}))
	assert.True(t, svc.Retry(bg).OK())
	assert.Equal(t, store.ViewReady, svc.ViewState(Query{}))
}
