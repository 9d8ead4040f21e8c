package store

import (
	"github.com/chhengkhim/Junior-project-sub002/pkg/validation"
)

// Result 一次 dispatch 的结果，调用方据此决定是否自行展示错误
type Result[T any] struct {
	Value T
	// Err 网络或 HTTP 错误
	Err error
	// Invalid 本地校验未通过，请求没有发出
	Invalid validation.Errors
	// Stale 响应已被更新的请求取代或视图已卸载，未写入状态
	Stale bool
	// Skipped 无需请求（例如没有未读通知）
	Skipped bool
}

// OK 请求成功且结果已写入状态
func (r Result[T]) OK() bool {
	return r.Err == nil && r.Invalid == nil && !r.Stale
}

// Failed 网络失败或校验失败
func (r Result[T]) Failed() bool {
	return r.Err != nil || r.Invalid != nil
}

// Invalid 构造校验失败结果
func Invalid[T any](errs validation.Errors) Result[T] {
	return Result[T]{Invalid: errs}
}

// Settle 根据 Commit 的返回值构造结果
func Settle[T any](value T, err error, applied bool) Result[T] {
	if !applied {
		return Result[T]{Value: value, Err: err, Stale: true}
	}
	return Result[T]{Value: value, Err: err}
}
