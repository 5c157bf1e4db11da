package contentstore

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	mh "github.com/multiformats/go-multihash"

	"github.com/weisyn/traitproof/pkg/types"
)

// RefLength CIDv0 引用的固定长度（"Qm" + 44 字符）
const RefLength = 46

// RefFor 计算数据的内容引用：sha2-256 multihash 的 base58btc 编码
func RefFor(data []byte) (string, error) {
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("计算内容哈希失败: %w", err)
	}
	return base58.Encode(sum), nil
}

// ParseRef 解析并校验内容引用
func ParseRef(ref string) (mh.Multihash, error) {
	if len(ref) != RefLength || ref[:2] != "Qm" {
		return nil, &types.FormatError{What: "content ref", Reason: fmt.Sprintf("expected %d-char Qm reference", RefLength)}
	}
	raw, err := base58.Decode(ref)
	if err != nil {
		return nil, &types.FormatError{What: "content ref", Reason: "invalid base58", Err: err}
	}
	decoded, err := mh.Decode(raw)
	if err != nil {
		return nil, &types.FormatError{What: "content ref", Reason: "invalid multihash", Err: err}
	}
	if decoded.Code != mh.SHA2_256 {
		return nil, &types.FormatError{What: "content ref", Reason: fmt.Sprintf("unsupported hash %s", decoded.Name)}
	}
	return mh.Multihash(raw), nil
}

// verifyContent 重新哈希并与引用比对
func verifyContent(ref mh.Multihash, data []byte) error {
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return err
	}
	if !bytes.Equal(sum, ref) {
		return &types.FormatError{What: "content", Reason: "hash does not match reference"}
	}
	return nil
}
