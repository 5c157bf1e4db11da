// Package types provides the proof error taxonomy.
package types

import (
	"errors"
	"fmt"
	"time"
)

// ============================================================================
//                              证明错误分类
// ============================================================================
//
// 每一类错误同时提供结构化类型（errors.As）和哨兵值（errors.Is），
// 调用方按需选择匹配方式。

var (
	// ErrDomain 输入越界
	ErrDomain = errors.New("value outside domain")

	// ErrUninitialized 证明后端尚未初始化
	ErrUninitialized = errors.New("proof engine not initialized")

	// ErrAssertionFailed 谓词不可满足
	ErrAssertionFailed = errors.New("predicate assertion failed")

	// ErrFormat 证明或记录格式损坏
	ErrFormat = errors.New("malformed proof data")

	// ErrExpired 证明记录已过期
	ErrExpired = errors.New("proof record expired")

	// ErrUnavailable 远程依赖重试耗尽
	ErrUnavailable = errors.New("remote dependency unavailable")
)

// DomainError 输入值超出声明区间
//
// 在进入电路之前抛出，不会经过见证计算。
type DomainError struct {
	Field  string
	Value  interface{}
	Min    int
	Max    int
	Reason string
}

func (e *DomainError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s=%v (%s)", ErrDomain, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: %s=%v not in [%d,%d]", ErrDomain, e.Field, e.Value, e.Min, e.Max)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// UninitializedError 在 Initialize 完成前调用 Generate/Verify
type UninitializedError struct {
	Component string
}

func (e *UninitializedError) Error() string {
	if e.Component == "" {
		return ErrUninitialized.Error()
	}
	return fmt.Sprintf("%s: %s", ErrUninitialized, e.Component)
}

func (e *UninitializedError) Is(target error) bool { return target == ErrUninitialized }

// AssertionFailedError 谓词对给定私有输入不成立
//
// Reason 面向用户，只引用公开阈值和维度名称，不包含私有分数。
type AssertionFailedError struct {
	Kind   ProofKind
	Reason string
}

func (e *AssertionFailedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrAssertionFailed, e.Kind, e.Reason)
}

func (e *AssertionFailedError) Is(target error) bool { return target == ErrAssertionFailed }

// FormatError 序列化证明或记录损坏
type FormatError struct {
	What   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrFormat, e.What, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrFormat, e.What, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func (e *FormatError) Unwrap() error { return e.Err }

// ExpiredError 验证时发现记录已过期（非致命，记录仍可加载）
type ExpiredError struct {
	ExpiresAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("%s at %s", ErrExpired, e.ExpiresAt.UTC().Format(time.RFC3339Nano))
}

func (e *ExpiredError) Is(target error) bool { return target == ErrExpired }

// UnavailableError 远程依赖（内容存储、账本、证明密钥）重试耗尽
//
// 对本次操作是终态，对进程不是致命错误，调用方可稍后重试。
type UnavailableError struct {
	Resource string
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s after %d attempts: %v", ErrUnavailable, e.Resource, e.Attempts, e.Err)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func (e *UnavailableError) Unwrap() error { return e.Err }
