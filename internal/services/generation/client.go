// Package generation 把上游图像编辑模型封装为带限速和重试的客户端，
// 并在其上编排扣积分、逐槽位生成、落库和结算的完整流程。
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aivory/fitstudio/apperrors"
	"golang.org/x/time/rate"
)

// Editor 图像编辑上游的抽象
type Editor interface {
	// Edit 用给定提示词改绘一张图片，imageB64 为纯 base64 负载
	Edit(ctx context.Context, prompt, imageB64 string) (*EditResult, error)
}

// EditResult 上游返回的单张产出
type EditResult struct {
	Base64Data string
	MimeType   string
}

// ClientConfig HTTP 客户端配置
type ClientConfig struct {
	EndpointURL    string
	APIKey         string
	AttemptTimeout time.Duration
	MaxAttempts    int
	RPS            float64
	Burst          int

	// BackoffUnit 线性退避的单位时长，第 n 次失败后等待 n*BackoffUnit
	BackoffUnit time.Duration
}

// Client 上游图像编辑服务的 HTTP 客户端。
// 每次尝试独立限时；仅超时、网络瞬断和 5xx 触发重试。
type Client struct {
	endpointURL    string
	apiKey         string
	attemptTimeout time.Duration
	maxAttempts    int
	backoffUnit    time.Duration

	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewClient 创建上游客户端
func NewClient(cfg ClientConfig) *Client {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 180 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = 2 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Client{
		endpointURL:    cfg.EndpointURL,
		apiKey:         cfg.APIKey,
		attemptTimeout: cfg.AttemptTimeout,
		maxAttempts:    cfg.MaxAttempts,
		backoffUnit:    cfg.BackoffUnit,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		httpClient:     &http.Client{},
	}
}

// editRequest 上游请求体
type editRequest struct {
	Prompt string       `json:"prompt"`
	Images []inputImage `json:"images"`
}

type inputImage struct {
	Type  string `json:"type"`
	Image string `json:"image"`
}

// editResponse 上游响应体
type editResponse struct {
	Image struct {
		Base64Data string `json:"base64Data"`
		MimeType   string `json:"mimeType"`
	} `json:"image"`
}

// Edit 调用上游改绘图片，失败按配置重试
func (c *Client) Edit(ctx context.Context, prompt, imageB64 string) (*EditResult, error) {
	body, err := json.Marshal(editRequest{
		Prompt: prompt,
		Images: []inputImage{{Type: "image", Image: imageB64}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode edit request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, retryable, err := c.doAttempt(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = fmt.Errorf("edit attempt %d/%d: %w", attempt, c.maxAttempts, err)
		if !retryable || attempt == c.maxAttempts {
			return nil, lastErr
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoffUnit):
		}
	}
	return nil, lastErr
}

// doAttempt 执行单次限时请求并对失败分类
func (c *Client) doAttempt(ctx context.Context, body []byte) (result *EditResult, retryable bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 调用方取消不再重试，单次超时和网络瞬断重试
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return nil, false, apperrors.ErrImageTooLarge
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, false, apperrors.ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, true, c.upstreamError(resp)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, false, c.upstreamError(resp)
	}

	var decoded editResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
	}
	if decoded.Image.Base64Data == "" {
		return nil, false, apperrors.ErrMalformedResponse
	}

	return &EditResult{
		Base64Data: decoded.Image.Base64Data,
		MimeType:   decoded.Image.MimeType,
	}, false, nil
}

// upstreamError 读取响应体片段构造上游错误
func (c *Client) upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &apperrors.UpstreamError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
