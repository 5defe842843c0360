package middleware

import (
	"net/http"
	"sync"
	"time"

	"pipeflow/internal/apierror"

	"github.com/gin-gonic/gin"
)

// LoginRateLimiter is the tight limiter mounted on /auth/login to slow
// credential stuffing.
func LoginRateLimiter() gin.HandlerFunc {
	return RateLimiter(10, time.Minute)
}

// RateLimiter is a per-client-IP sliding window limiter.
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	type bucket struct {
		hits []time.Time
	}
	var mu sync.Mutex
	buckets := make(map[string]*bucket)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		b, ok := buckets[ip]
		if !ok {
			b = &bucket{}
			buckets[ip] = b
		}
		cutoff := now.Add(-window)
		kept := b.hits[:0]
		for _, t := range b.hits {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		b.hits = kept

		if len(b.hits) >= maxRequests {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests"))
			return
		}
		b.hits = append(b.hits, now)
		mu.Unlock()

		c.Next()
	}
}
