package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"sigflow/internal/consts"
	"sigflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookAuth 校验请求体的 HMAC-SHA256 签名
// 发送方把 hex(hmac_sha256(secret, body)) 放进 X-Signature 请求头
// secret 为空时跳过校验
func WebhookAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		signature := c.GetHeader(consts.Signature)
		if signature == "" {
			response.BadRequests(c)
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequests(c)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(expected), []byte(signature)) {
			response.BadRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
