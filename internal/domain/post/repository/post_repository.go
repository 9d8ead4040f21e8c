package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/post/model"
	"github.com/chhengkhim/Junior-project-sub002/pkg/apiclient"
	"github.com/chhengkhim/Junior-project-sub002/pkg/utils"

	"github.com/pkg/errors"
)

type PostRepository interface {
	ListByStatus(ctx context.Context, status model.Status, page int) ([]model.Post, utils.Pagination, error)
	Create(ctx context.Context, in model.CreateInput) (*model.Post, error)
	UpdateStatus(ctx context.Context, id int64, upd model.StatusUpdate) (*model.Post, error)
}

type postRepository struct {
	client *apiclient.Client
}

func NewPostRepository(client *apiclient.Client) PostRepository {
	return &postRepository{client: client}
}

func (r *postRepository) ListByStatus(ctx context.Context, status model.Status, page int) ([]model.Post, utils.Pagination, error) {
	q := url.Values{"status": {string(status)}}
	if p := utils.PageParam(page); p != "" {
		q.Set("page", p)
	}

	var res utils.PageResult[model.Post]
	if err := r.client.Get(ctx, "admin/posts", q, &res); err != nil {
		return nil, utils.Pagination{}, errors.Wrapf(err, "list %s posts", status)
	}
	for i := range res.Data {
		res.Data[i].Normalize()
	}
	return res.Data, res.Pagination.Normalize(), nil
}

func (r *postRepository) Create(ctx context.Context, in model.CreateInput) (*model.Post, error) {
	var post model.Post
	var err error
	if in.Image != nil {
		err = r.client.PostMultipart(ctx, "posts", multipartFields(in), []apiclient.File{{
			Field:    "image",
			Filename: in.Image.Filename,
			Reader:   in.Image.Reader,
		}}, &post)
	} else {
		err = r.client.Post(ctx, "posts", in, &post)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create post")
	}
	post.Normalize()
	return &post, nil
}

// multipartFields Laravel 风格的数组字段 tags[]
func multipartFields(in model.CreateInput) map[string][]string {
	fields := map[string][]string{
		"title":        {in.Title},
		"content":      {in.Content},
		"is_anonymous": {boolField(in.IsAnonymous)},
	}
	if len(in.Tags) > 0 {
		fields["tags[]"] = in.Tags
	}
	if in.Emotion != "" {
		fields["emotion"] = []string{in.Emotion}
	}
	if in.Link != "" {
		fields["link"] = []string{in.Link}
	}
	if in.Image != nil && in.Image.AltText != "" {
		fields["image_alt_text"] = []string{in.Image.AltText}
	}
	return fields
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (r *postRepository) UpdateStatus(ctx context.Context, id int64, upd model.StatusUpdate) (*model.Post, error) {
	var post model.Post
	path := fmt.Sprintf("admin/posts/%s/status", strconv.FormatInt(id, 10))
	if err := r.client.Patch(ctx, path, upd, &post); err != nil {
		return nil, errors.Wrapf(err, "update post %d status", id)
	}
	if post.ID == 0 {
		// 后端只返回 message 时没有实体
		return nil, nil
	}
	post.Normalize()
	return &post, nil
}
