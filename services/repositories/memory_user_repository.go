package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

// MemoryUserRepository keeps progression records in process memory for demo
// mode and tests. Records are stored encoded so callers never share maps
// with the store.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64][]byte
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[int64][]byte{}}
}

func (r *MemoryUserRepository) Get(_ context.Context, telegramID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(telegramID)
}

func (r *MemoryUserRepository) GetOrCreate(_ context.Context, telegramID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[telegramID]; !ok {
		u := model.NewUser(telegramID)
		u.CreatedAt = time.Now()
		u.UpdatedAt = u.CreatedAt
		if err := r.store(u); err != nil {
			return nil, err
		}
	}
	return r.load(telegramID)
}

func (r *MemoryUserRepository) Save(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(user.TelegramID)
	if err != nil {
		return err
	}
	if current.Version != user.Version {
		return shared.ErrVersionConflict
	}

	next := *user
	next.Version = user.Version + 1
	next.UpdatedAt = time.Now()
	if err := r.store(&next); err != nil {
		return err
	}
	user.Version = next.Version
	user.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *MemoryUserRepository) load(telegramID int64) (*model.User, error) {
	data, ok := r.users[telegramID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	var u model.User
	if err := sonic.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	u.Normalize()
	return &u, nil
}

func (r *MemoryUserRepository) store(u *model.User) error {
	data, err := sonic.Marshal(u)
	if err != nil {
		return err
	}
	r.users[u.TelegramID] = data
	return nil
}
