package proofrecord

import "errors"

var (
	// ErrNotOwner 签名者不是记录所有者
	ErrNotOwner = errors.New("signer is not the record owner")

	// ErrNotPublished 记录尚未发布到内容存储
	ErrNotPublished = errors.New("proof record not published")

	// ErrAlreadyAttached 附加字段已有值，拒绝覆盖
	ErrAlreadyAttached = errors.New("field already attached")

	// ErrRecordNotFound 本地不存在该记录
	ErrRecordNotFound = errors.New("proof record not found")

	// ErrNoLedger 未配置账本
	ErrNoLedger = errors.New("ledger not configured")

	// ErrNoContentStore 未配置内容存储
	ErrNoContentStore = errors.New("content store not configured")

	// ErrNilProof 传入的证明为空
	ErrNilProof = errors.New("nil proof")
)
