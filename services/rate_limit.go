package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/shared"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const RATE_LIMIT_SVC = "rate_limit_svc"

const (
	RateLimitAuth  = "auth"
	RateLimitChat  = "chat"
	RateLimitPhoto = "photo"
)

type RateLimitConfig struct {
	MaxRequests int
	WindowSize  time.Duration
	Message     string
}

var defaultRateLimits = map[string]RateLimitConfig{
	RateLimitAuth: {
		MaxRequests: 10,
		WindowSize:  time.Minute,
		Message:     "Too many login attempts. Please try again later.",
	},
	RateLimitChat: {
		MaxRequests: 20,
		WindowSize:  time.Minute,
		Message:     "You are sending messages too fast. Please slow down.",
	},
	RateLimitPhoto: {
		MaxRequests: 10,
		WindowSize:  time.Minute,
		Message:     "Too many photo requests. Please try again later.",
	},
}

// RateLimitService throttles bursts per caller. Windows are counted in
// Redis when available so limits hold across instances, otherwise each
// key gets an in-process token bucket.
type RateLimitService struct {
	appContext.DefaultService

	configs map[string]RateLimitConfig
	redis   *RedisService

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRateLimitService(redisSvc *RedisService, configs map[string]RateLimitConfig) *RateLimitService {
	if configs == nil {
		configs = defaultRateLimits
	}
	return &RateLimitService{
		configs:  configs,
		redis:    redisSvc,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.configs = defaultRateLimits
	svc.limiters = make(map[string]*rate.Limiter)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok && redisSvc.Enabled() {
		svc.redis = redisSvc
	}
	return nil
}

// IsAllowed counts one request from identifier against the endpoint limit
func (svc *RateLimitService) IsAllowed(ctx context.Context, identifier, endpointType string) (*dto.RateLimitInfo, error) {
	cfg, ok := svc.configs[endpointType]
	if !ok {
		return &dto.RateLimitInfo{Allowed: true, Remaining: -1}, nil
	}

	key := fmt.Sprintf("rate_limit:%s:%s", endpointType, identifier)

	if svc.redis.Enabled() {
		count, ttl, err := svc.redis.IncrementWindow(ctx, key, cfg.WindowSize)
		if err == nil {
			reset := time.Now().Add(ttl)
			remaining := cfg.MaxRequests - int(count)
			if remaining < 0 {
				remaining = 0
			}
			return &dto.RateLimitInfo{
				Allowed:   int(count) <= cfg.MaxRequests,
				Limit:     cfg.MaxRequests,
				Remaining: remaining,
				ResetTime: &reset,
			}, nil
		}
		log.WithError(err).WithField("endpoint", endpointType).Warn("Redis rate limit failed, using local limiter")
	}

	limiter := svc.localLimiter(key, cfg)
	allowed := limiter.Allow()
	remaining := int(limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return &dto.RateLimitInfo{
		Allowed:   allowed,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
	}, nil
}

func (svc *RateLimitService) localLimiter(key string, cfg RateLimitConfig) *rate.Limiter {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	limiter, ok := svc.limiters[key]
	if !ok {
		every := cfg.WindowSize / time.Duration(cfg.MaxRequests)
		limiter = rate.NewLimiter(rate.Every(every), cfg.MaxRequests)
		svc.limiters[key] = limiter
	}
	return limiter
}

// Limit keys authenticated requests by telegram id and anonymous ones by IP
func (svc *RateLimitService) Limit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.IP()
		if userID, ok := c.Locals(shared.UserID).(int64); ok && userID > 0 {
			identifier = strconv.FormatInt(userID, 10)
		}

		info, err := svc.IsAllowed(c.UserContext(), identifier, endpointType)
		if err != nil {
			log.WithError(err).WithField("endpoint", endpointType).Error("Rate limit check failed")
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !info.Allowed {
			return shared.NewRateLimitedError(nil, svc.configs[endpointType].Message)
		}
		return c.Next()
	}
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil || info.Limit == 0 {
		return
	}

	c.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		if !info.Allowed {
			retryAfter := int(time.Until(*info.ResetTime).Seconds())
			if retryAfter > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			}
		}
	}
}
