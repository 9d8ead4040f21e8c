package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/faq/model"
	"github.com/chhengkhim/Junior-project-sub002/pkg/apiclient"
	"github.com/chhengkhim/Junior-project-sub002/pkg/utils"

	"github.com/pkg/errors"
)

// FAQRepository 远程接口或内置数据，二者对服务层不可区分
type FAQRepository interface {
	List(ctx context.Context, search string) ([]model.FAQ, error)
	Create(ctx context.Context, in model.Input) (*model.FAQ, error)
	Update(ctx context.Context, id int64, in model.Input) (*model.FAQ, error)
	Delete(ctx context.Context, id int64) error
	ReadOnly() bool
}

type faqRepository struct {
	client *apiclient.Client
}

func NewFAQRepository(client *apiclient.Client) FAQRepository {
	return &faqRepository{client: client}
}

func (r *faqRepository) List(ctx context.Context, search string) ([]model.FAQ, error) {
	q := url.Values{}
	if s := strings.TrimSpace(search); s != "" {
		q.Set("search", s)
	}
	var raw json.RawMessage
	if err := r.client.Get(ctx, "faqs", q, &raw); err != nil {
		return nil, errors.Wrap(err, "list faqs")
	}
	return decodeList(raw)
}

// decodeList 接口可能返回分页结构，也可能直接返回数组
func decodeList(raw json.RawMessage) ([]model.FAQ, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []model.FAQ
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, errors.Wrap(err, "decode faqs")
		}
		return list, nil
	}
	var page utils.PageResult[model.FAQ]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, errors.Wrap(err, "decode faqs")
	}
	return page.Data, nil
}

func (r *faqRepository) Create(ctx context.Context, in model.Input) (*model.FAQ, error) {
	var faq model.FAQ
	if err := r.client.Post(ctx, "faqs", in, &faq); err != nil {
		return nil, errors.Wrap(err, "create faq")
	}
	return &faq, nil
}

func (r *faqRepository) Update(ctx context.Context, id int64, in model.Input) (*model.FAQ, error) {
	var faq model.FAQ
	if err := r.client.Put(ctx, fmt.Sprintf("faqs/%d", id), in, &faq); err != nil {
		return nil, errors.Wrapf(err, "update faq %d", id)
	}
	if faq.ID == 0 {
		faq = model.FAQ{ID: id, Question: in.Question, Answer: in.Answer}
	}
	return &faq, nil
}

func (r *faqRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, fmt.Sprintf("faqs/%d", id)); err != nil {
		return errors.Wrapf(err, "delete faq %d", id)
	}
	return nil
}

func (r *faqRepository) ReadOnly() bool { return false }
