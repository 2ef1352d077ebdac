package repositories

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CharacterRepository reads the companion roster from Postgres
type CharacterRepository struct {
	BaseRepository
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *CharacterRepository) ListActive(ctx context.Context) ([]model.Character, error) {
	var characters []model.Character
	if err := ds.DB(ctx).Where("is_active = ?", true).Order("sort_order ASC, id ASC").Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

func (ds *CharacterRepository) GetByID(ctx context.Context, id string) (*model.Character, error) {
	var character model.Character
	if err := ds.DB(ctx).Where("id = ?", id).First(&character).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &character, nil
}

// Upsert inserts the character or overwrites its editable fields
func (ds *CharacterRepository) Upsert(ctx context.Context, character *model.Character) error {
	return ds.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "age", "personality", "welcome_message", "bio", "photos", "is_active", "sort_order", "updated_at"}),
	}).Create(character).Error
}

// MemoryCharacterRepository serves a fixed roster for demo mode and tests
type MemoryCharacterRepository struct {
	mu         sync.RWMutex
	characters map[string]model.Character
}

func NewMemoryCharacterRepository(characters []model.Character) *MemoryCharacterRepository {
	r := &MemoryCharacterRepository{characters: map[string]model.Character{}}
	for _, c := range characters {
		r.characters[c.ID] = c
	}
	return r
}

func (r *MemoryCharacterRepository) ListActive(_ context.Context) ([]model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Character, 0, len(r.characters))
	for _, c := range r.characters {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryCharacterRepository) GetByID(_ context.Context, id string) (*model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.characters[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCharacterRepository) Upsert(_ context.Context, character *model.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.characters[character.ID] = *character
	return nil
}
