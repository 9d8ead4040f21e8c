package model

import (
	"strings"
	"time"
)

// Type 通知类型
type Type string

const (
	TypeAdminMessage    Type = "admin_message"
	TypeComment         Type = "comment"
	TypeLike            Type = "like"
	TypePostApproved    Type = "post_approved"
	TypePostRejected    Type = "post_rejected"
	TypeCommentApproved Type = "comment_approved"
	TypeCommentRejected Type = "comment_rejected"
)

var Types = []Type{
	TypeAdminMessage, TypeComment, TypeLike,
	TypePostApproved, TypePostRejected,
	TypeCommentApproved, TypeCommentRejected,
}

// ParseType 空字符串或 all 表示不过滤
func ParseType(s string) (Type, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return "", true
	}
	for _, t := range Types {
		if Type(s) == t {
			return t, true
		}
	}
	return "", false
}

// Notification 站内通知
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	IsRead    bool      `json:"is_read"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadState 已读过滤
type ReadState string

const (
	ReadAny    ReadState = ""
	ReadOnly   ReadState = "read"
	UnreadOnly ReadState = "unread"
)

// ParseReadState all/read/unread
func ParseReadState(s string) (ReadState, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ReadAny, true
	case "read":
		return ReadOnly, true
	case "unread":
		return UnreadOnly, true
	}
	return "", false
}

// Filters 列表查询参数，重试时原样重发
type Filters struct {
	Type   Type
	Read   ReadState
	Search string
	Page   int
}

// UnreadIDs 按集合顺序返回未读通知的 id
func UnreadIDs(items []Notification) []int64 {
	var ids []int64
	for _, n := range items {
		if !n.IsRead {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// CountUnread 未读数量，每次从集合重新计算
func CountUnread(items []Notification) int {
	return len(UnreadIDs(items))
}
