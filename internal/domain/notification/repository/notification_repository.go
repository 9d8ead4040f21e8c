package repository

import (
	"context"
	"net/url"
	"strings"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/notification/model"
	"github.com/chhengkhim/Junior-project-sub002/pkg/apiclient"
	"github.com/chhengkhim/Junior-project-sub002/pkg/utils"

	"github.com/pkg/errors"
)

type NotificationRepository interface {
	List(ctx context.Context, f model.Filters) ([]model.Notification, utils.Pagination, error)
	MarkRead(ctx context.Context, ids []int64) error
}

type notificationRepository struct {
	client *apiclient.Client
}

func NewNotificationRepository(client *apiclient.Client) NotificationRepository {
	return &notificationRepository{client: client}
}

// Query 过滤条件转换为查询参数，未设置的条件不出现
func Query(f model.Filters) url.Values {
	q := url.Values{}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	switch f.Read {
	case model.ReadOnly:
		q.Set("is_read", "1")
	case model.UnreadOnly:
		q.Set("is_read", "0")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	if p := utils.PageParam(f.Page); p != "" {
		q.Set("page", p)
	}
	return q
}

func (r *notificationRepository) List(ctx context.Context, f model.Filters) ([]model.Notification, utils.Pagination, error) {
	var res utils.PageResult[model.Notification]
	if err := r.client.Get(ctx, "notifications", Query(f), &res); err != nil {
		return nil, utils.Pagination{}, errors.Wrap(err, "list notifications")
	}
	return res.Data, res.Pagination.Normalize(), nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, ids []int64) error {
	body := struct {
		IDs []int64 `json:"ids"`
	}{IDs: ids}
	if err := r.client.Post(ctx, "notifications/mark-read", body, nil); err != nil {
		return errors.Wrapf(err, "mark %d notifications read", len(ids))
	}
	return nil
}
