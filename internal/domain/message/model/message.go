package model

import (
	"strings"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/pkg/validation"
)

// Status 联系表单处理状态，任意状态之间可以直接切换
type Status string

const (
	StatusUnread   Status = "unread"
	StatusRead     Status = "read"
	StatusResolved Status = "resolved"
)

var Statuses = []Status{StatusUnread, StatusRead, StatusResolved}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// Message 联系表单提交
type Message struct {
	ID           int64     `json:"id"`
	SenderName   string    `json:"senderName"`
	SenderEmail  string    `json:"senderEmail"`
	Subject      string    `json:"subject"`
	Message      string    `json:"message"`
	Status       Status    `json:"status"`
	ReceivedDate time.Time `json:"receivedDate"`
}

// StatusUpdate 状态修改请求体
type StatusUpdate struct {
	Status Status `json:"status" validate:"oneof=unread read resolved"`
}

func (u StatusUpdate) Validate() validation.Errors {
	return validation.Struct(u)
}

// SearchFields 可搜索字段
func SearchFields(m Message) []string {
	return []string{m.SenderName, m.SenderEmail, m.Subject, m.Message}
}
