package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/lac-hong-legacy/ven_companion/model"
)

// UserStore loads and saves progression records. Save must fail with
// shared.ErrVersionConflict when the record changed since it was loaded.
type UserStore interface {
	Get(ctx context.Context, telegramID int64) (*model.User, error)
	GetOrCreate(ctx context.Context, telegramID int64) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
}

type CharacterCatalog interface {
	ListActive(ctx context.Context) ([]model.Character, error)
	GetByID(ctx context.Context, id string) (*model.Character, error)
}

// RandomSource drives candidate shuffling and photo draws
type RandomSource interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// PhotoResolver turns a stored photo reference into a client loadable URL
type PhotoResolver interface {
	ResolvePhotoURL(ctx context.Context, key string) string
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomSource(seed int64) RandomSource {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func newDefaultRandomSource() RandomSource {
	return NewRandomSource(time.Now().UnixNano())
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}

type passthroughResolver struct{}

func (passthroughResolver) ResolvePhotoURL(_ context.Context, key string) string {
	return key
}
