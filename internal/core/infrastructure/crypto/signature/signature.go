// Package signature 提供证明所有者身份与撤销签名
//
// 所有者身份是一把 secp256k1 私钥，对外以压缩公钥的十六进制表示。
// 签名对消息做双 SHA256 后使用 ECDSA，DER 编码。
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	btcec_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/google/renameio/v2"
)

// 错误定义
var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

const (
	// PublicKeyLength 压缩公钥长度
	PublicKeyLength = 33
	// PrivateKeyLength 私钥长度
	PrivateKeyLength = 32
)

// Identity 证明所有者身份
type Identity struct {
	priv *btcec.PrivateKey
}

// NewIdentity 生成新的随机身份
func NewIdentity() (*Identity, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("生成私钥失败: %w", err)
	}
	return &Identity{priv: priv}, nil
}

// FromPrivateKey 包装已有私钥
func FromPrivateKey(priv *btcec.PrivateKey) *Identity {
	return &Identity{priv: priv}
}

// ParseIdentity 从十六进制私钥恢复身份
func ParseIdentity(privHex string) (*Identity, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(privHex), "0x"))
	if err != nil || len(raw) != PrivateKeyLength {
		return nil, ErrInvalidPrivateKey
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return &Identity{priv: priv}, nil
}

// LoadIdentity 从文件读取十六进制私钥
func LoadIdentity(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取身份文件失败: %w", err)
	}
	return ParseIdentity(string(data))
}

// Save 以 0600 权限原子写入私钥
func (i *Identity) Save(path string) error {
	if err := renameio.WriteFile(path, []byte(i.PrivateKeyHex()+"\n"), 0o600); err != nil {
		return fmt.Errorf("写入身份文件失败: %w", err)
	}
	return nil
}

// PrivateKey 底层私钥
func (i *Identity) PrivateKey() *btcec.PrivateKey { return i.priv }

// PrivateKeyHex 私钥十六进制
func (i *Identity) PrivateKeyHex() string { return hex.EncodeToString(i.priv.Serialize()) }

// Owner 压缩公钥十六进制，即证明记录中的 owner
func (i *Identity) Owner() string {
	return OwnerOf(i.priv)
}

// Sign 对消息签名
func (i *Identity) Sign(message []byte) []byte {
	return Sign(i.priv, message)
}

// OwnerOf 私钥对应的 owner 字符串
func OwnerOf(priv *btcec.PrivateKey) string {
	return hex.EncodeToString(priv.PubKey().SerializeCompressed())
}

// DoubleSHA256 双SHA256哈希
func DoubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// Sign 对 SHA256d(message) 做 ECDSA 签名，返回 DER 编码
func Sign(priv *btcec.PrivateKey, message []byte) []byte {
	return btcec_ecdsa.Sign(priv, DoubleSHA256(message)).Serialize()
}

// ParsePublicKey 解析压缩公钥十六进制
func ParsePublicKey(owner string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(owner)
	if err != nil || len(raw) != PublicKeyLength {
		return nil, ErrInvalidPublicKey
	}
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pub, nil
}

// Verify 校验 owner 对 message 的签名
func Verify(owner string, message, sig []byte) error {
	pub, err := ParsePublicKey(owner)
	if err != nil {
		return err
	}
	parsed, err := btcec_ecdsa.ParseDERSignature(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !parsed.Verify(DoubleSHA256(message), pub) {
		return ErrInvalidSignature
	}
	return nil
}
