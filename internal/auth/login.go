package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrBadSignature = errors.New("malformed signature")
	ErrNoSecret     = errors.New("jwt secret not configured")
)

const DefaultTokenTTL = 24 * time.Hour

type LoginRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Nonce     string `json:"nonce" binding:"required"`
}

type Options struct {
	TokenTTL time.Duration
	NonceTTL time.Duration
	Clock    quartz.Clock
	Logger   *log.Logger
}

type Handler struct {
	secret   []byte
	tokenTTL time.Duration
	nonceTTL time.Duration
	clock    quartz.Clock
	logger   *log.Logger

	mu     sync.Mutex
	nonces map[string]time.Time // nonce -> 过期时间
}

// 工厂方法：创建 handler
func NewHandler(secret string, opts Options) *Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.NonceTTL <= 0 {
		opts.NonceTTL = DefaultNonceTTL
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Handler{
		secret:   []byte(secret),
		tokenTTL: opts.TokenTTL,
		nonceTTL: opts.NonceTTL,
		clock:    opts.Clock,
		logger:   opts.Logger.WithPrefix("auth"),
		nonces:   make(map[string]time.Time),
	}
}

// SignMessage 钱包需要签名的原文
func SignMessage(nonce string) string {
	return "Sign this message to authenticate with PokerRooms. Nonce: " + nonce
}

// RecoverAddress 按 MetaMask personal_sign 的格式恢复签名者地址
func RecoverAddress(msg, signature string) (string, error) {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	hash := crypto.Keccak256Hash([]byte(prefixed))

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil || len(sig) != crypto.SignatureLength {
		return "", ErrBadSignature
	}
	// 修正 V 值
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// IssueToken 签发 HS256 JWT，sub 为钱包地址
func (h *Handler) IssueToken(address string) (string, error) {
	if len(h.secret) == 0 {
		return "", ErrNoSecret
	}
	now := h.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   address,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if !h.consumeNonce(req.Nonce) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid nonce"})
		return
	}

	recovered, err := RecoverAddress(SignMessage(req.Nonce), req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verify failed"})
		return
	}
	if !strings.EqualFold(recovered, req.Address) {
		h.logger.Warn("signature mismatch", "claimed", req.Address, "recovered", recovered)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature mismatch"})
		return
	}

	// 统一使用校验和格式的地址作为身份
	token, err := h.IssueToken(recovered)
	if err != nil {
		h.logger.Error("issue token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}
	h.logger.Info("login", "address", recovered)
	c.JSON(http.StatusOK, gin.H{"jwt": token, "address": recovered})
}
