package auth

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = bcrypt.DefaultCost

// randomPasswordAlphabet 生成随机密码时使用的字符集。
const randomPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// HashPassword 对明文密码进行哈希处理
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), defaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword 验证密码是否与存储的哈希值匹配。哈希格式非法时同样返回不匹配，
// 而不是 panic 或暴露内部错误。
func VerifyPassword(hash, candidate string) bool {
	if strings.TrimSpace(hash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// RandomPassword returns a random alphanumeric password of the given length.
// Used when an administrator creates an account without supplying a password;
// the plaintext is mailed to the new user exactly once and never stored.
func RandomPassword(length int) (string, error) {
	if length <= 0 {
		length = 8
	}
	builder := strings.Builder{}
	builder.Grow(length)
	max := big.NewInt(int64(len(randomPasswordAlphabet)))
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(randomPasswordAlphabet[idx.Int64()])
	}
	return builder.String(), nil
}
