package couponcode

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrKeyUnavailable = errors.New("coupon code key unavailable")
	ErrCodeMalformed  = errors.New("coupon code malformed")
	ErrProofInvalid   = errors.New("coupon code proof invalid")
)

// PrefixLength 查询前缀固定长度
const PrefixLength = 8

const secretLength = 16

const prefixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Keeper 提供券码加密密钥（显式注入，不使用进程级全局状态）
type Keeper interface {
	Key() ([]byte, error)
}

// StaticKeeper 从配置密钥派生 AES-256 密钥
type StaticKeeper struct {
	secret string
}

// NewStaticKeeper 创建静态密钥提供者
func NewStaticKeeper(secret string) *StaticKeeper {
	return &StaticKeeper{secret: strings.TrimSpace(secret)}
}

// Key 返回派生密钥
func (k *StaticKeeper) Key() ([]byte, error) {
	if k == nil || k.secret == "" {
		return nil, ErrKeyUnavailable
	}
	sum := sha256.Sum256([]byte(k.secret))
	return sum[:], nil
}

// Code 两段式券码：前缀是查询键，密文后缀是持有凭证
type Code struct {
	Prefix string
	Proof  string
}

// Parse 拆分用户提交的完整券码
func Parse(raw string) (Code, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) <= PrefixLength {
		return Code{}, ErrCodeMalformed
	}
	return Code{
		Prefix: strings.ToUpper(trimmed[:PrefixLength]),
		Proof:  trimmed[PrefixLength:],
	}, nil
}

// String 还原完整券码
func (c Code) String() string {
	return c.Prefix + c.Proof
}

// Issued 签发结果
type Issued struct {
	Prefix   string // 存储的查询前缀
	Secret   string // 存储的凭证明文
	FullCode string // 发放给用户的完整券码（前缀+密文凭证）
}

// Issue 签发一张券码：随机前缀与明文凭证入库，加密凭证随完整券码发放
func Issue(keeper Keeper) (*Issued, error) {
	if keeper == nil {
		return nil, ErrKeyUnavailable
	}

	prefix, err := randomPrefix()
	if err != nil {
		return nil, err
	}

	secretBytes := make([]byte, secretLength)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, err
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	proof, err := encrypt(keeper, secret)
	if err != nil {
		return nil, err
	}

	return &Issued{
		Prefix:   prefix,
		Secret:   secret,
		FullCode: prefix + proof,
	}, nil
}

// Verify 校验凭证：解密用户提交的密文并与入库明文比对。
// 解密失败是正常的无效券结果，返回 ErrProofInvalid 而非异常。
func Verify(keeper Keeper, proof, storedSecret string) error {
	if keeper == nil {
		return ErrKeyUnavailable
	}
	plain, err := decrypt(keeper, proof)
	if err != nil {
		return ErrProofInvalid
	}
	if !hmac.Equal([]byte(plain), []byte(storedSecret)) {
		return ErrProofInvalid
	}
	return nil
}

func randomPrefix() (string, error) {
	buf := make([]byte, PrefixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, PrefixLength)
	for i, b := range buf {
		out[i] = prefixAlphabet[int(b)%len(prefixAlphabet)]
	}
	return string(out), nil
}

func encrypt(keeper Keeper, plaintext string) (string, error) {
	gcm, err := newGCM(keeper)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func decrypt(keeper Keeper, encoded string) (string, error) {
	gcm, err := newGCM(keeper)
	if err != nil {
		return "", err
	}
	sealed, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProofInvalid, err)
	}
	if len(sealed) < gcm.NonceSize() {
		return "", ErrProofInvalid
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProofInvalid, err)
	}
	return string(plain), nil
}

func newGCM(keeper Keeper) (cipher.AEAD, error) {
	key, err := keeper.Key()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
