package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const DefaultNonceTTL = 5 * time.Minute

func generateNonce() (string, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// issueNonce 记录 nonce 的过期时间，顺便清理已经过期的
func (h *Handler) issueNonce() (string, error) {
	nonce, err := generateNonce()
	if err != nil {
		return "", err
	}
	now := h.clock.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	for n, exp := range h.nonces {
		if now.After(exp) {
			delete(h.nonces, n)
		}
	}
	h.nonces[nonce] = now.Add(h.nonceTTL)
	return nonce, nil
}

// consumeNonce 只允许使用一次
func (h *Handler) consumeNonce(nonce string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	exp, ok := h.nonces[nonce]
	if !ok {
		return false
	}
	delete(h.nonces, nonce)
	return !h.clock.Now().After(exp)
}

// GET /auth/nonce
func (h *Handler) GetNonce(c *gin.Context) {
	nonce, err := h.issueNonce()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate nonce"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": nonce, "message": SignMessage(nonce)})
}

// POST /auth/nonce 与 GET 相同，兼容旧前端
func (h *Handler) PostNonce(c *gin.Context) {
	h.GetNonce(c)
}
