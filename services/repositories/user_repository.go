package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserProgress is the row layout of a progression record. Character keyed
// maps live in jsonb columns since the character set is open ended.
type UserProgress struct {
	TelegramID int64  `gorm:"primaryKey;autoIncrement:false"`
	Username   string `gorm:"size:64"`
	FirstName  string `gorm:"size:128"`

	Likes               datatypes.JSON `gorm:"type:jsonb"`
	Passes              datatypes.JSON `gorm:"type:jsonb"`
	SelectedCharacterID string         `gorm:"size:64"`

	ChatHistory            datatypes.JSON `gorm:"type:jsonb"`
	Sympathy               datatypes.JSON `gorm:"type:jsonb"`
	CharacterLevel         datatypes.JSON `gorm:"type:jsonb"`
	CharacterLevelProgress datatypes.JSON `gorm:"type:jsonb"`
	PhotoRequestPercent    datatypes.JSON `gorm:"type:jsonb"`
	UnlockedPhotos         datatypes.JSON `gorm:"type:jsonb"`

	SubscriptionLevel string `gorm:"size:16;not null;default:'free'"`
	Credits           int    `gorm:"not null;default:0"`

	DailyUsageDate       string `gorm:"size:10"`
	MessagesSentToday    int    `gorm:"not null;default:0"`
	PhotosRequestedToday int    `gorm:"not null;default:0"`

	DailyMissions datatypes.JSON `gorm:"type:jsonb"`

	Version   int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserProgress) TableName() string {
	return "user_progresses"
}

// UserRepository persists progression records with optimistic versioning:
// a save only lands if the stored version still matches the loaded one.
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *UserRepository) Get(ctx context.Context, telegramID int64) (*model.User, error) {
	var row UserProgress
	if err := ds.DB(ctx).Where("telegram_id = ?", telegramID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.toModel()
}

func (ds *UserRepository) GetOrCreate(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := ds.Get(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	row, err := fromModel(model.NewUser(telegramID))
	if err != nil {
		return nil, err
	}
	// a concurrent first read may have inserted the row already
	if err := ds.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return nil, err
	}
	return ds.Get(ctx, telegramID)
}

func (ds *UserRepository) Save(ctx context.Context, user *model.User) error {
	row, err := fromModel(user)
	if err != nil {
		return err
	}

	expected := user.Version
	now := time.Now()
	result := ds.DB(ctx).Model(&UserProgress{}).
		Where("telegram_id = ? AND version = ?", user.TelegramID, expected).
		Updates(map[string]interface{}{
			"username":                 row.Username,
			"first_name":               row.FirstName,
			"likes":                    row.Likes,
			"passes":                   row.Passes,
			"selected_character_id":    row.SelectedCharacterID,
			"chat_history":             row.ChatHistory,
			"sympathy":                 row.Sympathy,
			"character_level":          row.CharacterLevel,
			"character_level_progress": row.CharacterLevelProgress,
			"photo_request_percent":    row.PhotoRequestPercent,
			"unlocked_photos":          row.UnlockedPhotos,
			"subscription_level":       row.SubscriptionLevel,
			"credits":                  row.Credits,
			"daily_usage_date":         row.DailyUsageDate,
			"messages_sent_today":      row.MessagesSentToday,
			"photos_requested_today":   row.PhotosRequestedToday,
			"daily_missions":           row.DailyMissions,
			"version":                  expected + 1,
			"updated_at":               now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}

	user.Version = expected + 1
	user.UpdatedAt = now
	return nil
}

func fromModel(u *model.User) (*UserProgress, error) {
	row := &UserProgress{
		TelegramID:           u.TelegramID,
		Username:             u.Username,
		FirstName:            u.FirstName,
		SelectedCharacterID:  u.SelectedCharacterID,
		SubscriptionLevel:    u.SubscriptionLevel,
		Credits:              u.Credits,
		DailyUsageDate:       u.DailyUsageDate,
		MessagesSentToday:    u.MessagesSentToday,
		PhotosRequestedToday: u.PhotosRequestedToday,
		Version:              u.Version,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}

	fields := []struct {
		dst *datatypes.JSON
		src interface{}
	}{
		{&row.Likes, u.Likes},
		{&row.Passes, u.Passes},
		{&row.ChatHistory, u.ChatHistory},
		{&row.Sympathy, u.Sympathy},
		{&row.CharacterLevel, u.CharacterLevel},
		{&row.CharacterLevelProgress, u.CharacterLevelProgress},
		{&row.PhotoRequestPercent, u.PhotoRequestPercent},
		{&row.UnlockedPhotos, u.UnlockedPhotos},
		{&row.DailyMissions, u.DailyMissions},
	}
	for _, f := range fields {
		b, err := sonic.Marshal(f.src)
		if err != nil {
			return nil, fmt.Errorf("encode user %d: %w", u.TelegramID, err)
		}
		*f.dst = datatypes.JSON(b)
	}
	return row, nil
}

func (row *UserProgress) toModel() (*model.User, error) {
	u := &model.User{
		TelegramID:           row.TelegramID,
		Username:             row.Username,
		FirstName:            row.FirstName,
		SelectedCharacterID:  row.SelectedCharacterID,
		SubscriptionLevel:    row.SubscriptionLevel,
		Credits:              row.Credits,
		DailyUsageDate:       row.DailyUsageDate,
		MessagesSentToday:    row.MessagesSentToday,
		PhotosRequestedToday: row.PhotosRequestedToday,
		Version:              row.Version,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}

	fields := []struct {
		src datatypes.JSON
		dst interface{}
	}{
		{row.Likes, &u.Likes},
		{row.Passes, &u.Passes},
		{row.ChatHistory, &u.ChatHistory},
		{row.Sympathy, &u.Sympathy},
		{row.CharacterLevel, &u.CharacterLevel},
		{row.CharacterLevelProgress, &u.CharacterLevelProgress},
		{row.PhotoRequestPercent, &u.PhotoRequestPercent},
		{row.UnlockedPhotos, &u.UnlockedPhotos},
		{row.DailyMissions, &u.DailyMissions},
	}
	for _, f := range fields {
		if len(f.src) == 0 || string(f.src) == "null" {
			continue
		}
		if err := sonic.Unmarshal(f.src, f.dst); err != nil {
			return nil, fmt.Errorf("decode user %d: %w", row.TelegramID, err)
		}
	}
	u.Normalize()
	return u, nil
}
