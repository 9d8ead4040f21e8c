package model

import (
	"io"
	"strings"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/pkg/validation"
)

// Status 审核状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses 管理端标签页顺序
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// ParseStatus 非法值返回 false
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// Image 帖子配图
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// Post 匿名倾诉帖子
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"` // 保持录入顺序
	Emotion      string    `json:"emotion,omitempty"`
	Link         string    `json:"link,omitempty"`
	Image        *Image    `json:"image,omitempty"`
	Status       Status    `json:"status"`
	AdminNote    string    `json:"admin_note,omitempty"` // 仅 rejected 时有意义
	Author       string    `json:"author,omitempty"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	IsAnonymous  bool      `json:"is_anonymous"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Normalize 非 rejected 状态丢弃 admin_note
func (p *Post) Normalize() {
	if p.Status != StatusRejected {
		p.AdminNote = ""
	}
}

// ImageUpload 创建帖子时随表单上传的图片
type ImageUpload struct {
	Filename string
	AltText  string
	Reader   io.Reader
}

// CreateInput 创建帖子表单
type CreateInput struct {
	Title       string       `json:"title" validate:"notblank,min=5"`
	Content     string       `json:"content" validate:"notblank,min=10"`
	Tags        []string     `json:"tags,omitempty"`
	Emotion     string       `json:"emotion,omitempty"`
	Link        string       `json:"link,omitempty" validate:"omitempty,url"`
	IsAnonymous bool         `json:"is_anonymous"`
	Image       *ImageUpload `json:"-"`
}

// Validate 去除首尾空白、去重标签后校验
func (in *CreateInput) Validate() validation.Errors {
	validation.Trim(&in.Title, &in.Content, &in.Emotion, &in.Link)
	in.Tags = cleanTags(in.Tags)
	return validation.Struct(in)
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// RejectInput 拒绝理由，会作为 admin_note 展示给作者
type RejectInput struct {
	Reason string `json:"reason" validate:"notblank"`
}

// Validate 理由去空白后不能为空
func (in *RejectInput) Validate() validation.Errors {
	validation.Trim(&in.Reason)
	return validation.Struct(in)
}

// StatusUpdate 审核请求体
type StatusUpdate struct {
	Status    Status `json:"status"`
	AdminNote string `json:"admin_note,omitempty"`
}
