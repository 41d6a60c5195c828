package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDepthExceeded 写入会突破最大嵌套深度，不重试
	ErrDepthExceeded = errors.New("maximum comment depth exceeded")
	// ErrNotFound 目标不在缓存或存储中，不重试
	ErrNotFound = errors.New("not found")
	// ErrTransportFailure 存储或网络失败，乐观状态已回滚
	ErrTransportFailure = errors.New("transport failure")
	ErrInvalidContent   = errors.New("comment content is empty")
)

// TransportError 包装存储层错误，errors.Is(err, ErrTransportFailure)成立
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrTransportFailure, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailure
}

// Transport 将存储层错误归类，已分类的错误原样返回
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDepthExceeded) || errors.Is(err, ErrInvalidContent) || errors.Is(err, ErrForbidden) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// ErrForbidden 只有作者可以修改或删除评论
var ErrForbidden = errors.New("comment belongs to another user")
