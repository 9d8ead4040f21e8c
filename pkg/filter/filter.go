// Package filter 管理端列表的本地筛选与排序
package filter

import (
	"sort"
	"strings"
	"time"
)

// StatusAll 不按状态筛选
const StatusAll = "all"

// Order 排序方向
type Order string

const (
	Newest Order = "newest"
	Oldest Order = "oldest"
)

// ParseOrder 未知值按 newest 处理
func ParseOrder(s string) Order {
	if Order(strings.ToLower(strings.TrimSpace(s))) == Oldest {
		return Oldest
	}
	return Newest
}

// Criteria 筛选条件
type Criteria[T any] struct {
	Status   string           // 空或 "all" 表示不限
	Search   string           // 空表示不限，大小写不敏感的子串匹配
	StatusOf func(T) string   // 取实体状态
	Fields   func(T) []string // 可搜索的文本字段
}

// Match 状态匹配且搜索词出现在任一可搜索字段中
func (c Criteria[T]) Match(item T) bool {
	if c.Status != "" && c.Status != StatusAll && c.StatusOf != nil && c.StatusOf(item) != c.Status {
		return false
	}
	if c.Search == "" || c.Fields == nil {
		return true
	}
	term := strings.ToLower(c.Search)
	for _, f := range c.Fields(item) {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Apply 返回满足条件的新切片，保持原有顺序
func Apply[T any](items []T, c Criteria[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// SortByTime 稳定排序，返回新切片，时间相同的元素保持原有相对顺序
func SortByTime[T any](items []T, order Order, at func(T) time.Time) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if order == Oldest {
			return at(out[i]).Before(at(out[j]))
		}
		return at(out[i]).After(at(out[j]))
	})
	return out
}
