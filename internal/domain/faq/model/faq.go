package model

import (
	"time"

	"github.com/chhengkhim/Junior-project-sub002/pkg/validation"
)

// FAQ 常见问题
type FAQ struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Input 新建与编辑共用的表单
type Input struct {
	Question string `json:"question" validate:"notblank"`
	Answer   string `json:"answer" validate:"notblank"`
}

// Validate 去除首尾空白后两个字段都不能为空
func (in *Input) Validate() validation.Errors {
	validation.Trim(&in.Question, &in.Answer)
	return validation.Struct(in)
}

// CanSubmit 提交按钮是否可用，不修改表单
func (in Input) CanSubmit() bool {
	return in.Validate() == nil
}

// SearchFields 可搜索字段
func SearchFields(f FAQ) []string {
	return []string{f.Question, f.Answer}
}
