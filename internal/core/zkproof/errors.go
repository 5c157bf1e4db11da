// Package zkproof provides error definitions for the proof engine internals.
package zkproof

import (
	"errors"
	"fmt"
)

// ============================================================================
//                            证明引擎内部错误定义
// ============================================================================
//
// 面向调用方的错误分类（DomainError、AssertionFailedError 等）定义在 pkg/types，
// 这里是引擎内部组件之间传递的哨兵错误。

var (
	// ErrCircuitNotFound 电路未加载
	ErrCircuitNotFound = errors.New("circuit not found")

	// ErrCircuitCompilationFailed 电路编译失败
	ErrCircuitCompilationFailed = errors.New("circuit compilation failed")

	// ErrProofGenerationFailed 证明生成失败（非谓词原因）
	ErrProofGenerationFailed = errors.New("proof generation failed")

	// ErrKeyNotFound 密钥存储中不存在该密钥
	ErrKeyNotFound = errors.New("key not found")

	// ErrReadOnlyKeyStore 只读密钥存储拒绝写入
	ErrReadOnlyKeyStore = errors.New("key store is read-only")

	// ErrProvingKeyUnavailable 仅加载了验证密钥，无法生成证明
	ErrProvingKeyUnavailable = errors.New("proving key unavailable")

	// ErrVerifyingKeyMismatch 证明携带的验证密钥哈希与本地不一致
	ErrVerifyingKeyMismatch = errors.New("verifying key mismatch")

	// ErrInvalidPublicInputs 公开输入缺失、格式错误或与电路值不一致
	ErrInvalidPublicInputs = errors.New("invalid public inputs")

	// ErrUnsupportedScheme 不支持的证明方案或曲线
	ErrUnsupportedScheme = errors.New("unsupported proving scheme")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapCircuitNotFoundError 包装电路未找到错误
func WrapCircuitNotFoundError(circuitID string) error {
	return fmt.Errorf("%w: circuitID=%s", ErrCircuitNotFound, circuitID)
}

// WrapCircuitCompilationFailedError 包装电路编译失败错误
func WrapCircuitCompilationFailedError(circuitID string, err error) error {
	return fmt.Errorf("%w: circuitID=%s, cause=%v", ErrCircuitCompilationFailed, circuitID, err)
}

// WrapProofGenerationFailedError 包装证明生成失败错误
func WrapProofGenerationFailedError(circuitID string, err error) error {
	return fmt.Errorf("%w: circuitID=%s, cause=%v", ErrProofGenerationFailed, circuitID, err)
}

// WrapKeyNotFoundError 包装密钥缺失错误
func WrapKeyNotFoundError(circuitID string, kind KeyKind) error {
	return fmt.Errorf("%w: circuitID=%s, kind=%s", ErrKeyNotFound, circuitID, kind)
}

// WrapVerifyingKeyMismatchError 包装验证密钥不一致错误
func WrapVerifyingKeyMismatchError(circuitID, expected, actual string) error {
	return fmt.Errorf("%w: circuitID=%s, expected=%s, actual=%s", ErrVerifyingKeyMismatch, circuitID, expected, actual)
}

// WrapInvalidPublicInputsError 包装公开输入错误
func WrapInvalidPublicInputsError(circuitID, reason string) error {
	return fmt.Errorf("%w: circuitID=%s, reason=%s", ErrInvalidPublicInputs, circuitID, reason)
}
