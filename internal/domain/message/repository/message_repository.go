package repository

import (
	"context"
	"fmt"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/message/model"
	"github.com/chhengkhim/Junior-project-sub002/pkg/apiclient"
	"github.com/chhengkhim/Junior-project-sub002/pkg/utils"

	"github.com/pkg/errors"
)

type MessageRepository interface {
	List(ctx context.Context) ([]model.Message, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) (*model.Message, error)
}

type messageRepository struct {
	client *apiclient.Client
}

func NewMessageRepository(client *apiclient.Client) MessageRepository {
	return &messageRepository{client: client}
}

func (r *messageRepository) List(ctx context.Context) ([]model.Message, error) {
	var res utils.PageResult[model.Message]
	if err := r.client.Get(ctx, "admin/contact-messages", nil, &res); err != nil {
		return nil, errors.Wrap(err, "list contact messages")
	}
	return res.Data, nil
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id int64, status model.Status) (*model.Message, error) {
	var msg model.Message
	path := fmt.Sprintf("admin/contact-messages/%d/status", id)
	if err := r.client.Patch(ctx, path, model.StatusUpdate{Status: status}, &msg); err != nil {
		return nil, errors.Wrapf(err, "update contact message %d", id)
	}
	if msg.ID == 0 {
		return nil, nil
	}
	return &msg, nil
}
