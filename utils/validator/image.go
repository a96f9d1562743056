// Package validator 处理图片负载的规范化校验。
// 图片在核心层以 base64/data-URI 文本形式流转，不做光栅解码。
package validator

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aivory/fitstudio/apperrors"
)

// DefaultMaxImageBytes 编码后图片大小的硬上限（4 MB）
const DefaultMaxImageBytes = 4 << 20

// DefaultMimeType 上游未返回 MIME 时的兜底值
const DefaultMimeType = "image/png"

// StripDataURI 去掉 data-URI 前缀，返回纯 base64 负载和其中声明的 MIME 类型。
// 输入不是 data-URI 时原样返回，MIME 为空。
func StripDataURI(payload string) (b64 string, mimeType string) {
	if !strings.HasPrefix(payload, "data:") {
		return payload, ""
	}

	idx := strings.Index(payload, ",")
	if idx < 0 {
		return payload, ""
	}

	header := payload[len("data:"):idx]
	if semi := strings.Index(header, ";"); semi >= 0 {
		mimeType = header[:semi]
	} else {
		mimeType = header
	}
	return payload[idx+1:], mimeType
}

// CanonicalBase64 将输入图片（data-URI 或纯 base64）规范化为纯 base64。
// 编码后大小超过 maxBytes 时返回 apperrors.ErrImageTooLarge；
// 非法 base64 返回普通错误。
func CanonicalBase64(payload string, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}

	b64, _ := StripDataURI(payload)
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return "", fmt.Errorf("empty image payload")
	}
	if len(b64) > maxBytes {
		return "", apperrors.ErrImageTooLarge
	}

	if _, err := base64.StdEncoding.DecodeString(b64); err != nil {
		return "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return b64, nil
}

// BuildDataURI 将纯 base64 负载组装为 data-URI 规范形式
func BuildDataURI(b64, mimeType string) string {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return "data:" + mimeType + ";base64," + b64
}
