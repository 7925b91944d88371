package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"sigflow/conf"

	"golang.org/x/time/rate"
)

// 通用的重试 + 限速 + 超时请求执行器
// 重试范围：HTTP 429、HTTP >= 500、网络错误和单次超时；其余 4xx 不重试

// TransportError 重试耗尽后对外暴露的最终错误
type TransportError struct {
	Path       string
	Attempts   int
	StatusCode int // 最后一次响应的状态码，网络错误时为 0
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s failed after %d attempts, last status %d: %v",
			e.Path, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request %s failed after %d attempts: %v", e.Path, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestOptions 单次请求的参数
type RequestOptions struct {
	Method           string
	Headers          map[string]string
	Body             interface{}   // 非 nil 时序列化为 JSON
	SearchParams     url.Values    // 追加到 query string
	Timeout          time.Duration // 覆盖客户端默认的单次超时
	ExpectedStatuses []int         // 默认 [200]
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        conf.TransportConfig
}

func NewClient(rawUrl string, cfg conf.TransportConfig) (*Client, error) {
	parsed, err := url.Parse(rawUrl)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", rawUrl)
	}
	if len(parsed.Path) > 0 && parsed.Path[len(parsed.Path)-1:] == "/" {
		parsed.Path = parsed.Path[:len(parsed.Path)-1]
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 250 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	// 保证相邻两次请求之间至少间隔 1/rateLimitPerSecond 秒
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimitPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), 1)
	}

	return &Client{
		baseURL:    parsed.String(),
		httpClient: &http.Client{},
		limiter:    limiter,
		cfg:        cfg,
	}, nil
}

// Request 执行一次带重试的请求，返回响应体
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) ([]byte, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	expected := opts.ExpectedStatuses
	if len(expected) == 0 {
		expected = []int{http.StatusOK}
	}

	var bodyJSON []byte
	if opts.Body != nil {
		var err error
		bodyJSON, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	reqURL := c.baseURL + path
	if len(opts.SearchParams) > 0 {
		reqURL += "?" + opts.SearchParams.Encode()
	}

	var lastErr error
	lastStatus := 0

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		data, status, err := c.doAttempt(ctx, method, reqURL, bodyJSON, opts.Headers, timeout, expected)
		if err == nil {
			return data, nil
		}
		lastErr = err
		lastStatus = status

		if !retryable(status, err) {
			return nil, err
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		// 指数退避 + 最多20%的抖动
		backoff := float64(c.cfg.InitialDelay) * math.Pow(c.cfg.Multiplier, float64(attempt-1))
		if backoff > float64(c.cfg.MaxDelay) {
			backoff = float64(c.cfg.MaxDelay)
		}
		wait := time.Duration(backoff * (1 + 0.2*rand.Float64()))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, &TransportError{Path: path, Attempts: c.cfg.MaxAttempts, StatusCode: lastStatus, Err: lastErr}
}

// RequestJSON 执行请求并把响应体反序列化到 result
func (c *Client) RequestJSON(ctx context.Context, path string, opts RequestOptions, result interface{}) error {
	data, err := c.Request(ctx, path, opts)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// 单次请求，超时由派生 context 控制，超时视为可重试失败
func (c *Client) doAttempt(ctx context.Context, method, reqURL string, body []byte,
	headers map[string]string, timeout time.Duration, expected []int) ([]byte, int, error) {

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, reqURL, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	for _, s := range expected {
		if resp.StatusCode == s {
			return data, resp.StatusCode, nil
		}
	}
	return nil, resp.StatusCode, fmt.Errorf("received non-OK HTTP status: %s", resp.Status)
}

// 判断是否值得重试
func retryable(status int, err error) bool {
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	if status != 0 {
		// 其余 4xx 属于调用方错误，不重试
		return false
	}
	// 网络错误或单次超时
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return err != nil
}
