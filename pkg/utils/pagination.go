package utils

import "strconv"

// Pagination 列表分页元数据（后端 Laravel 风格字段）
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page,omitempty"`
	Total       int `json:"total,omitempty"`
}

// PageResult 后端分页响应中的 data 部分
type PageResult[T any] struct {
	Data []T `json:"data"`
	Pagination
}

// HasNext 是否还有下一页
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.LastPage
}

// Normalize 修正缺失或越界的页码
func (p Pagination) Normalize() Pagination {
	if p.CurrentPage <= 0 {
		p.CurrentPage = 1
	}
	if p.LastPage < p.CurrentPage {
		p.LastPage = p.CurrentPage
	}
	return p
}

// PageParam 页码转为查询参数值，非正数视为未设置
func PageParam(page int) string {
	if page <= 0 {
		return ""
	}
	return strconv.Itoa(page)
}
