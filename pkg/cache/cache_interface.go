package cache

import (
	"context"
	"time"
)

// Cache là lớp đọc nhanh cho dữ liệu suy ra được (vd. usage count của promo code).
// Không bao giờ là nguồn sự thật: miss hoặc lỗi thì caller đọc lại từ repository.
// Implementations: infrastructure/cache.RedisCache, MemoryCache (fallback + tests).
type Cache interface {
	// Get JSON-decodes the cached value into dest; found=false on miss or expiry
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)

	// Set với ttl <= 0 nghĩa là không hết hạn
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
