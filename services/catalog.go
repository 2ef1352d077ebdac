package services

import (
	"context"
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/seed/seeders"
	"github.com/lac-hong-legacy/ven_companion/services/repositories"
	"github.com/lac-hong-legacy/ven_companion/shared"
	log "github.com/sirupsen/logrus"
)

const CATALOG_SVC = "catalog_svc"

const (
	CatalogCacheKey = "catalog:characters:active"
	catalogCacheTTL = 10 * time.Minute
)

type characterStore interface {
	CharacterCatalog
	Upsert(ctx context.Context, character *model.Character) error
}

// CatalogService serves the read-only character roster, caching the
// active list in Redis when it is configured.
type CatalogService struct {
	appContext.DefaultService

	store    characterStore
	redis    *RedisService
	photos   PhotoResolver
	pg       *PostgresService
	cacheTTL time.Duration
}

func NewCatalogService(store characterStore, redisSvc *RedisService, photos PhotoResolver) *CatalogService {
	if photos == nil {
		photos = passthroughResolver{}
	}
	return &CatalogService{store: store, redis: redisSvc, photos: photos, cacheTTL: catalogCacheTTL}
}

func (svc CatalogService) Id() string {
	return CATALOG_SVC
}

func (svc *CatalogService) Configure(ctx *appContext.Context) error {
	svc.cacheTTL = catalogCacheTTL
	svc.photos = passthroughResolver{}
	return svc.DefaultService.Configure(ctx)
}

func (svc *CatalogService) Start() error {
	svc.pg = svc.Service(POSTGRES_SVC).(*PostgresService)
	if repo := svc.pg.CharacterRepository(); repo != nil {
		svc.store = repo
	} else {
		log.Info("Serving the built-in character roster")
		svc.store = repositories.NewMemoryCharacterRepository(seeders.DefaultCharacters())
	}

	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok && redisSvc.Enabled() {
		svc.redis = redisSvc
	}
	if minioSvc, ok := svc.Service(MINIO_SVC).(*MinIOService); ok && minioSvc != nil {
		svc.photos = minioSvc
	}
	return nil
}

func (svc *CatalogService) ListActive(ctx context.Context) ([]model.Character, error) {
	if svc.redis.Enabled() {
		var cached []model.Character
		hit, err := svc.redis.GetJSON(ctx, CatalogCacheKey, &cached)
		if err != nil {
			log.WithError(err).Warn("Catalog cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	characters, err := svc.store.ListActive(ctx)
	if err != nil {
		return nil, svc.handleError(err)
	}

	if svc.redis.Enabled() {
		if err := svc.redis.SetJSON(ctx, CatalogCacheKey, characters, svc.cacheTTL); err != nil {
			log.WithError(err).Warn("Catalog cache write failed")
		}
	}
	return characters, nil
}

func (svc *CatalogService) GetByID(ctx context.Context, id string) (*model.Character, error) {
	c, err := svc.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		return nil, svc.handleError(err)
	}
	return c, nil
}

// Upsert writes a character and drops the cached roster
func (svc *CatalogService) Upsert(ctx context.Context, character *model.Character) error {
	if err := svc.store.Upsert(ctx, character); err != nil {
		return svc.handleError(err)
	}
	svc.Invalidate(ctx)
	return nil
}

func (svc *CatalogService) Invalidate(ctx context.Context) {
	if !svc.redis.Enabled() {
		return
	}
	if err := svc.redis.Delete(ctx, CatalogCacheKey); err != nil {
		log.WithError(err).Warn("Catalog cache invalidation failed")
	}
}

func (svc *CatalogService) ListCharacters(ctx context.Context) ([]dto.CharacterResponse, error) {
	characters, err := svc.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CharacterResponse, 0, len(characters))
	for i := range characters {
		out = append(out, newCharacterResponse(ctx, svc.photos, &characters[i]))
	}
	return out, nil
}

func (svc *CatalogService) GetCharacter(ctx context.Context, id string) (*dto.CharacterResponse, error) {
	c, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "Character not found")
		}
		return nil, err
	}
	resp := newCharacterResponse(ctx, svc.photos, c)
	return &resp, nil
}

func (svc *CatalogService) handleError(err error) error {
	if svc.pg != nil {
		err = svc.pg.HandleError(err)
	}
	return shared.NewInternalError(err, "Character catalog unavailable")
}

func newCharacterResponse(ctx context.Context, photos PhotoResolver, c *model.Character) dto.CharacterResponse {
	out := make([]dto.Photo, 0, len(c.Photos))
	for _, p := range c.Photos {
		out = append(out, dto.Photo{
			Key:           p.URL,
			URL:           photos.ResolvePhotoURL(ctx, p.URL),
			RequiredLevel: p.RequiredLevel,
		})
	}
	return dto.CharacterResponse{
		ID:             c.ID,
		Name:           c.Name,
		Age:            c.Age,
		Personality:    c.Personality,
		WelcomeMessage: c.WelcomeMessage,
		Bio:            c.Bio,
		Photos:         out,
	}
}
