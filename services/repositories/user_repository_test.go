package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "user_progresses" WHERE telegram_id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"telegram_id"}))

		_, err := repo.Get(ctx, 42)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DecodesJSONColumns", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		rows := sqlmock.NewRows([]string{"telegram_id", "likes", "sympathy", "unlocked_photos", "subscription_level", "credits", "version"}).
			AddRow(42, []byte(`["a","b"]`), []byte(`{"a":1.5}`), []byte(`{"a":["p1.jpg"]}`), "gold", 7, 3)
		mock.ExpectQuery(`SELECT \* FROM "user_progresses"`).WillReturnRows(rows)

		u, err := repo.Get(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), u.TelegramID)
		assert.Equal(t, []string{"a", "b"}, u.Likes)
		assert.Equal(t, 1.5, u.Sympathy["a"])
		assert.True(t, u.HasUnlocked("a", "p1.jpg"))
		assert.Equal(t, "gold", u.SubscriptionLevel)
		assert.Equal(t, 7, u.Credits)
		assert.Equal(t, int64(3), u.Version)
		assert.NotNil(t, u.ChatHistory)
		assert.NotNil(t, u.CharacterLevel)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("BumpsVersion", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE "user_progresses" SET .* WHERE telegram_id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		u := model.NewUser(42)
		u.Version = 4
		require.NoError(t, repo.Save(ctx, u))
		assert.Equal(t, int64(5), u.Version)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StaleVersionConflicts", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE "user_progresses" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		u := model.NewUser(42)
		u.Version = 4
		err := repo.Save(ctx, u)
		assert.ErrorIs(t, err, shared.ErrVersionConflict)
		assert.Equal(t, int64(4), u.Version)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		_, err := repo.Get(ctx, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("GetOrCreateIsLazyAndStable", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		u, err := repo.GetOrCreate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, shared.TierFree, u.SubscriptionLevel)
		assert.Zero(t, u.Version)

		u.Credits = 10
		require.NoError(t, repo.Save(ctx, u))

		again, err := repo.GetOrCreate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 10, again.Credits)
		assert.Equal(t, int64(1), again.Version)
	})

	t.Run("LoadedCopiesAreIsolated", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		u, err := repo.GetOrCreate(ctx, 1)
		require.NoError(t, err)

		u.Sympathy["a"] = 99
		fresh, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.NotContains(t, fresh.Sympathy, "a")
	})

	t.Run("StaleSaveConflicts", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		first, err := repo.GetOrCreate(ctx, 1)
		require.NoError(t, err)
		second, err := repo.Get(ctx, 1)
		require.NoError(t, err)

		first.Credits = 5
		require.NoError(t, repo.Save(ctx, first))

		second.Credits = 9
		assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrVersionConflict)

		stored, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 5, stored.Credits)
	})
}

func TestMemoryCharacterRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCharacterRepository([]model.Character{
		{ID: "b", Name: "B", IsActive: true, SortOrder: 2},
		{ID: "a", Name: "A", IsActive: true, SortOrder: 1},
		{ID: "c", Name: "C", IsActive: false},
	})

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	_, err = repo.GetByID(ctx, "zzz")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	c, err := repo.GetByID(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "C", c.Name)
}
