// Package idgen 生成带前缀的不透明字符串标识符。
// 正常情况下使用随机 UUID；当安全随机源不可用时退化为
// 时间戳+随机后缀并打印警告（退化模式不保证加密级唯一性）。
package idgen

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 实体前缀
const (
	PrefixUser        = "usr"
	PrefixImage       = "img"
	PrefixHistory     = "hist"
	PrefixTransaction = "txn"
)

var degradedOnce sync.Once

// New 生成一个带前缀的标识符，如 "usr_1b4e28ba-2fa1-11d2-883f-0016d3cca427"
func New(prefix string) string {
	id, err := uuid.NewRandom()
	if err != nil {
		return newDegraded(prefix)
	}
	return prefix + "_" + id.String()
}

// newDegraded 退化模式：时间戳+随机后缀，仅在随机源不可用时使用
func newDegraded(prefix string) string {
	degradedOnce.Do(func() {
		log.Printf("[Warning] secure random source unavailable, falling back to timestamp-based IDs")
	})
	return fmt.Sprintf("%s_%d-%06d", prefix, time.Now().UnixNano(), rand.Intn(1000000))
}
