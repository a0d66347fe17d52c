package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dvillanueva/loanpulse-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// How long the "in-progress" marker is held before the handler must have
// finished or the key expires.
const provisionalLockTTL = 60 * time.Second

type idempEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency makes mutating requests replayable: a repeated request with
// the same Idempotency-Key gets the stored response instead of a second
// execution. Requests without the header pass through untouched.
func Idempotency(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		sum := sha256.Sum256(body)
		bhash := hex.EncodeToString(sum[:])

		storeKey := "idemp:" + c.Request.Method + ":" + c.FullPath() + ":" + key
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		entry := idempEntry{InProgress: true, BodySHA256: bhash, CreatedAt: time.Now().UTC()}
		raw, _ := json.Marshal(entry)
		ok, err := rdb.SetNX(ctx, storeKey, raw, provisionalLockTTL).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "idempotency store unavailable"})
			return
		}

		if !ok {
			cur, err := loadEntry(ctx, rdb, storeKey)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "idempotency store unavailable"})
				return
			}
			if cur.BodySHA256 != bhash {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key reused with a different request body"})
				return
			}
			if cur.InProgress {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this Idempotency-Key is still in progress"})
				return
			}
			c.Data(cur.Code, "application/json", cur.Body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = recorder
		c.Next()

		entry = idempEntry{
			Code:       recorder.Status(),
			Body:       recorder.buf.Bytes(),
			BodySHA256: bhash,
			CreatedAt:  time.Now().UTC(),
		}
		raw, _ = json.Marshal(entry)
		if err := rdb.Set(context.Background(), storeKey, raw, ttl).Err(); err != nil {
			logger.Error("failed to store idempotent response", "key", storeKey, "error", err)
		}
	}
}

func loadEntry(ctx context.Context, rdb *redis.Client, key string) (*idempEntry, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var entry idempEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
