package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/readleaf/readleaf_api/shared"
)

// RateLimitService throttles sensitive endpoints with fixed per-IP
// windows kept in redis.
type RateLimitService struct {
	appContext.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redisSvc *RedisService
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int64
	WindowSize   time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"login": {
			EndpointType: "login",
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			Description:  "Login attempts rate limit",
			IsActive:     true,
		},
		"register": {
			EndpointType: "register",
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			Description:  "Registration attempts rate limit",
			IsActive:     true,
		},
		"completion": {
			EndpointType: "completion",
			MaxRequests:  60,
			WindowSize:   time.Minute,
			Description:  "Book completion rate limit",
			IsActive:     true,
		},
	}
}

func (svc *RateLimitService) getConfig(endpointType string) *RateLimitConfig {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	return svc.configs[endpointType]
}

// Middleware enforces the named endpoint's limit keyed on client IP.
// Redis trouble fails open: throttling is protection, not correctness.
func (svc *RateLimitService) Middleware(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg := svc.getConfig(endpointType)
		if cfg == nil || !cfg.IsActive {
			return c.Next()
		}

		key := fmt.Sprintf("rate:%s:%s", endpointType, c.IP())
		count, err := svc.redisSvc.IncrWindow(context.Background(), key, cfg.WindowSize)
		if err != nil {
			log.WithError(err).WithField("endpoint_type", endpointType).
				Warn("Rate limit check failed, allowing request")
			return c.Next()
		}

		if count > cfg.MaxRequests {
			log.WithFields(log.Fields{
				"endpoint_type": endpointType,
				"ip":            c.IP(),
				"count":         count,
			}).Warn("Rate limit exceeded")
			return shared.ResponseJSON(c, fiber.StatusTooManyRequests,
				"Too Many Requests", "Rate limit exceeded, try again later")
		}

		return c.Next()
	}
}
