package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"school-equipment-lending-system/db"
)

// TouchLastSeen stamps the user's last activity, throttled through Redis so
// busy clients do not hammer the users table.
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := UserID(c)
		if uid == 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("lend:lastseen:%d", uid)
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = repo.TouchUserSeen(c, uid) // best effort
		}
		c.Next()
	}
}
