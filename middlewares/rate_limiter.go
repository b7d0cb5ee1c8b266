package middlewares

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	redisclient "github.com/vairaleo03/classrent/config/redis"
	"github.com/vairaleo03/classrent/logger"
)

// NewRateLimiter builds a gin middleware limiting each client to the given
// rate (ulule format, e.g. "10-1m"). Counters live in redis so limits hold
// across instances; without redis the limiter degrades to an in-process store.
func NewRateLimiter(rateFormat, routeID string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(rateFormat)
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid rate format %q for route %s: %v", rateFormat, routeID, err)
		// never let a config typo disable the route
		return func(c *gin.Context) { c.Next() }
	}

	var store limiter.Store
	if rdb, err := redisclient.GetRedisClient(context.Background()); err == nil {
		store, err = redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
			Prefix: "rate_limit:" + routeID,
		})
		if err != nil {
			logger.WarnLogger.Warnf("Redis rate limit store unavailable for %s, using memory: %v", routeID, err)
			store = memory.NewStore()
		}
	} else {
		logger.WarnLogger.Warnf("Redis unavailable for rate limiting %s, using memory store", routeID)
		store = memory.NewStore()
	}

	return ginmiddleware.NewMiddleware(limiter.New(store, rate))
}
