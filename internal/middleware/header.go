package middleware

import (
	"net/http"
	"strings"
	"time"

	"sigflow/internal/consts"
	"sigflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// NoCache 控制客户端不要使用缓存
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, max-age=0, must-revalidate")
		c.Header("Expires", "Thu, 01 Jan 1970 00:00:00 GMT")
		c.Header("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		c.Next()
	}
}

// RequestId 用来设置和透传requestId
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		c.Header("X-Request-Id", requestId)

		// 设置requestId到context中，便于后面调用链的透传
		c.Set(consts.RequestId, requestId)
		c.Next()
	}
}

// 限制缓存的最大大小为 500，且是并发安全的 LRU 缓存
var reqCache, _ = lru.New(500)
var duplicateThreshold = 1 * time.Second

// AntiDuplicateMiddleware 防止单个客户端 IP 在阀值内重复发送同一路径的请求
func AntiDuplicateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + c.Request.URL.Path
		if value, ok := reqCache.Get(key); ok {
			lastRequestTime := value.(time.Time)
			if time.Since(lastRequestTime) < duplicateThreshold {
				response.TooManyRequests(c)
				c.Abort()
				return
			}
		}
		reqCache.Add(key, time.Now())
		c.Next()
	}
}
