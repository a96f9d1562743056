package cryptoutil

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id 参数
const (
	// memory 是以 KiB 为单位的内存消耗
	argon2Memory uint32 = 65536 // 64 MB

	// iterations 是迭代次数（时间成本）
	argon2Iterations uint32 = 2

	// parallelism 是并行度（线程数）
	argon2Parallelism uint8 = 4

	// saltLength 是盐值的字节长度，至少 16 字节
	saltLength = 16

	// keyLength 是生成的哈希的字节长度
	argon2KeyLength uint32 = 32
)

// HashPassword 生成随机盐值并计算密码摘要，返回 "salt:hash" 格式的单个字符串。
// 盐值来自加密安全的随机源；摘要使用 Argon2id。
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(plaintext), salt, argon2Iterations, argon2Memory, argon2Parallelism, argon2KeyLength)

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(hash), nil
}

// VerifyPassword 校验明文密码与存储的 "salt:hash" 是否匹配。
// 存储值格式非法（缺少分隔符、非十六进制）时返回 false，不返回错误。
func VerifyPassword(plaintext, stored string) bool {
	parts := strings.SplitN(stored, ":", 2)
	if len(parts) != 2 {
		return false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := hex.DecodeString(parts[1])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), salt, argon2Iterations, argon2Memory, argon2Parallelism, uint32(len(expected)))

	// constant-time 比较，防止定时攻击
	return subtle.ConstantTimeCompare(expected, computed) == 1
}
