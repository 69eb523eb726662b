package strava

import (
	"errors"
	"fmt"
)

// Kind 区分失败原因，调用方可据此区分"不存在"与"暂时不可用"。
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindTransport    Kind = "transport"
	KindMalformed    Kind = "malformed"
	KindStatus       Kind = "status"
)

// 与 Kind 一一对应的哨兵错误，配合 errors.Is 使用。
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("access token rejected")
	ErrTransport    = errors.New("transport failure")
	ErrMalformed    = errors.New("malformed response")
	ErrStatus       = errors.New("unexpected status")
)

// Error 描述一次 API 调用失败。Op 为请求路径（不含令牌）。
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("strava %s %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, ErrNotFound) 等判断基于 Kind 成立。
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindUnauthorized:
		return ErrUnauthorized
	case KindTransport:
		return ErrTransport
	case KindMalformed:
		return ErrMalformed
	case KindStatus:
		return ErrStatus
	default:
		return nil
	}
}

// KindOf 返回 err 链中第一个 *Error 的 Kind，不存在时返回空串。
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
