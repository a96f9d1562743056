// Package apperrors 定义核心层共享的错误类型
// 存储层的约束冲突和外部接口的失败在各自边界处翻译为这些错误，
// 调用方不直接处理驱动层错误。
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEmail 注册邮箱已存在
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials 登录凭据错误（不区分邮箱不存在和密码错误）
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInsufficientCredits 积分余额不足
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount 积分变动数额必须为正数
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrImageTooLarge 图片超过大小上限
	ErrImageTooLarge = errors.New("image too large")

	// ErrRateLimited 上游接口限流
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrMalformedResponse 上游返回成功状态但响应体不可用
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrTotalGenerationFailure 一次生成请求的所有槽位全部失败
	ErrTotalGenerationFailure = errors.New("all generation attempts failed")
)

// UpstreamError 上游接口返回的非 2xx 错误，保留状态码和响应体文本
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream error: status %d: %s", e.StatusCode, e.Body)
}
