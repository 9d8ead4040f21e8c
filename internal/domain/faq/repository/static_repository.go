package repository

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/faq/model"
	"github.com/chhengkhim/Junior-project-sub002/pkg/filter"

	"github.com/pkg/errors"
)

// ErrReadOnly 内置数据源不支持写操作
var ErrReadOnly = errors.New("faq source is read-only")

//go:embed fixtures/faqs.json
var fixture []byte

type staticRepository struct {
	items []model.FAQ
}

// NewStaticRepository 用户端使用的内置 FAQ，data 为空时使用内置数据
func NewStaticRepository(data []byte) (FAQRepository, error) {
	if len(data) == 0 {
		data = fixture
	}
	var items []model.FAQ
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "decode faq fixture")
	}
	return &staticRepository{items: items}, nil
}

func (r *staticRepository) List(ctx context.Context, search string) ([]model.FAQ, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filter.Apply(r.items, filter.Criteria[model.FAQ]{
		Search: search,
		Fields: model.SearchFields,
	}), nil
}

func (r *staticRepository) Create(context.Context, model.Input) (*model.FAQ, error) {
	return nil, ErrReadOnly
}

func (r *staticRepository) Update(context.Context, int64, model.Input) (*model.FAQ, error) {
	return nil, ErrReadOnly
}

func (r *staticRepository) Delete(context.Context, int64) error {
	return ErrReadOnly
}

func (r *staticRepository) ReadOnly() bool { return true }
