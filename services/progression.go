package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/progression"
	"github.com/lac-hong-legacy/ven_companion/shared"
	log "github.com/sirupsen/logrus"
)

const PROGRESSION_SVC = "progression_svc"

const maxSaveAttempts = 5

// errSkipSave lets a mutation finish without writing the record
var errSkipSave = errors.New("skip save")

// ProgressionService owns every rule that turns user activity into
// affinity, levels, quotas and photo unlocks. Each operation is one load,
// in-memory mutation and one versioned save, retried on conflict.
type ProgressionService struct {
	appContext.DefaultService

	store   UserStore
	catalog CharacterCatalog
	photos  PhotoResolver
	rnd     RandomSource
	now     func() time.Time
}

func NewProgressionService(store UserStore, catalog CharacterCatalog, rnd RandomSource, now func() time.Time) *ProgressionService {
	if rnd == nil {
		rnd = newDefaultRandomSource()
	}
	if now == nil {
		now = time.Now
	}
	return &ProgressionService{
		store:   store,
		catalog: catalog,
		photos:  passthroughResolver{},
		rnd:     rnd,
		now:     now,
	}
}

func (svc ProgressionService) Id() string {
	return PROGRESSION_SVC
}

func (svc *ProgressionService) Configure(ctx *appContext.Context) error {
	svc.rnd = newDefaultRandomSource()
	svc.now = time.Now
	svc.photos = passthroughResolver{}
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressionService) Start() error {
	svc.store = svc.Service(POSTGRES_SVC).(*PostgresService).UserStore()
	svc.catalog = svc.Service(CATALOG_SVC).(*CatalogService)
	if minio, ok := svc.Service(MINIO_SVC).(*MinIOService); ok && minio != nil {
		svc.photos = minio
	}
	return nil
}

// SetPhotoResolver swaps how stored photo references are exposed to clients
func (svc *ProgressionService) SetPhotoResolver(r PhotoResolver) {
	if r == nil {
		r = passthroughResolver{}
	}
	svc.photos = r
}

// ==================== USER METHODS ====================

// GetOrCreateUser returns the record for the user, creating it on first
// sight. Known profile fields are stored when they changed.
func (svc *ProgressionService) GetOrCreateUser(ctx context.Context, userID int64, username, firstName string) (*dto.UserResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	user, err := svc.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, svc.storageError(err, userID)
	}

	if (username != "" && username != user.Username) || (firstName != "" && firstName != user.FirstName) {
		user, err = svc.mutate(ctx, userID, func(u *model.User) error {
			if username != "" {
				u.Username = username
			}
			if firstName != "" {
				u.FirstName = firstName
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (svc *ProgressionService) SelectCharacter(ctx context.Context, userID int64, characterID string) (*dto.UserResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if _, err := svc.character(ctx, characterID); err != nil {
		return nil, err
	}

	user, err := svc.mutate(ctx, userID, func(u *model.User) error {
		u.SelectedCharacterID = characterID
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// AddCredits tops up the balance. Only exposed on demo deployments.
func (svc *ProgressionService) AddCredits(ctx context.Context, userID int64, amount int) (int, error) {
	if err := validateUserID(userID); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, shared.NewValidationError("Amount must be positive", nil)
	}

	user, err := svc.mutate(ctx, userID, func(u *model.User) error {
		u.Credits += amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.Credits, nil
}

// SetSubscriptionLevel changes the tier. Only exposed on demo deployments.
func (svc *ProgressionService) SetSubscriptionLevel(ctx context.Context, userID int64, tier string) (*dto.EntitlementsResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if !shared.IsValidTier(tier) {
		return nil, shared.NewValidationError("Unknown subscription tier", tier)
	}

	user, err := svc.mutate(ctx, userID, func(u *model.User) error {
		u.SubscriptionLevel = tier
		return nil
	})
	if err != nil {
		return nil, err
	}
	return svc.entitlements(ctx, user), nil
}

func (svc *ProgressionService) GetEntitlements(ctx context.Context, userID int64) (*dto.EntitlementsResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	user, err := svc.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, svc.storageError(err, userID)
	}
	return svc.entitlements(ctx, user), nil
}

func (svc *ProgressionService) entitlements(ctx context.Context, u *model.User) *dto.EntitlementsResponse {
	// counters from a previous day read as zero without persisting the reset
	progression.EnsureDailyUsage(u, svc.today())

	unlocked := make(map[string][]dto.Photo, len(u.UnlockedPhotos))
	for characterID, keys := range u.UnlockedPhotos {
		photos := make([]dto.Photo, 0, len(keys))
		for _, key := range keys {
			photos = append(photos, svc.photo(ctx, key, 0))
		}
		unlocked[characterID] = photos
	}

	tiers := make(map[string]int, len(u.Sympathy))
	for characterID, s := range u.Sympathy {
		tiers[characterID] = progression.AffinityTier(s)
	}

	return &dto.EntitlementsResponse{
		SubscriptionLevel:      u.SubscriptionLevel,
		Credits:                u.Credits,
		UnlockedPhotos:         unlocked,
		Sympathy:               u.Sympathy,
		AffinityTier:           tiers,
		CharacterLevel:         u.CharacterLevel,
		CharacterLevelProgress: u.CharacterLevelProgress,
		PhotoRequestPercent:    u.PhotoRequestPercent,
		DailyUsageDate:         u.DailyUsageDate,
		DailyLimits:            progression.LimitsFor(u.SubscriptionLevel),
		DailyLimitsRemaining:   progression.Remaining(u),
	}
}

// ==================== DISCOVERY METHODS ====================

// RecordMatchAction adds the character to likes or passes. The opposite set
// is left untouched.
func (svc *ProgressionService) RecordMatchAction(ctx context.Context, userID int64, characterID, action string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if action != shared.ActionLike && action != shared.ActionPass {
		return shared.NewValidationError("Action must be like or pass", action)
	}
	if _, err := svc.character(ctx, characterID); err != nil {
		return err
	}

	_, err := svc.mutate(ctx, userID, func(u *model.User) error {
		switch action {
		case shared.ActionLike:
			if u.HasLiked(characterID) {
				return errSkipSave
			}
			u.Likes = append(u.Likes, characterID)
		case shared.ActionPass:
			if u.HasPassed(characterID) {
				return errSkipSave
			}
			u.Passes = append(u.Passes, characterID)
		}
		return nil
	})
	return err
}

// ListCandidates orders the roster for swiping: unseen characters first,
// liked ones without a conversation next, passed ones last. Each group is
// shuffled on every call. Characters the user already chats with are left
// out. A zero userID lists the whole roster as unseen.
func (svc *ProgressionService) ListCandidates(ctx context.Context, userID int64) ([]dto.CharacterResponse, error) {
	if userID < 0 {
		return nil, validateUserID(userID)
	}

	characters, err := svc.catalog.ListActive(ctx)
	if err != nil {
		return nil, svc.storageError(err, userID)
	}

	user := model.NewUser(userID)
	if userID > 0 {
		if user, err = svc.store.GetOrCreate(ctx, userID); err != nil {
			return nil, svc.storageError(err, userID)
		}
	}

	var unseen, liked, passed []model.Character
	for _, c := range characters {
		hasHistory := len(user.ChatHistory[c.ID]) > 0
		switch {
		case user.HasLiked(c.ID) && hasHistory:
			continue
		case user.HasPassed(c.ID):
			passed = append(passed, c)
		case user.HasLiked(c.ID):
			liked = append(liked, c)
		default:
			unseen = append(unseen, c)
		}
	}

	out := make([]dto.CharacterResponse, 0, len(characters))
	for _, group := range [][]model.Character{unseen, liked, passed} {
		svc.rnd.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		for i := range group {
			out = append(out, svc.characterResponse(ctx, &group[i]))
		}
	}
	return out, nil
}

// ListMatches returns liked characters, most recent conversation first.
// Characters without messages show their welcome message and sort last.
func (svc *ProgressionService) ListMatches(ctx context.Context, userID int64) ([]dto.MatchSummary, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	user, err := svc.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, svc.storageError(err, userID)
	}

	matches := make([]dto.MatchSummary, 0, len(user.Likes))
	for _, characterID := range user.Likes {
		c, err := svc.catalog.GetByID(ctx, characterID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, svc.storageError(err, userID)
		}

		summary := dto.MatchSummary{
			CharacterID: c.ID,
			Name:        c.Name,
			LastMessage: c.WelcomeMessage,
			Sympathy:    user.Sympathy[c.ID],
			Level:       user.CharacterLevel[c.ID],
		}
		if len(c.Photos) > 0 {
			avatar := svc.photo(ctx, c.Photos[0].URL, c.Photos[0].RequiredLevel)
			summary.Avatar = &avatar
		}
		if history := user.ChatHistory[c.ID]; len(history) > 0 {
			last := history[len(history)-1]
			summary.LastMessage = last.Text
			summary.LastMessageTime = epochMillis(last.Timestamp)
		}
		matches = append(matches, summary)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].LastMessageTime > matches[j].LastMessageTime
	})
	return matches, nil
}

// ==================== CHAT METHODS ====================

// RecordMessage appends a message and applies its progression effects.
// Ordinary user messages consume the daily message quota, add affinity,
// advance the level and raise the photo ratchet. The photo request marker
// is stored without any of that. A character message carrying a photo
// consumes the daily photo quota, unlocks the photo and resets the
// ratchet. Nothing is written when a quota is exhausted.
func (svc *ProgressionService) RecordMessage(ctx context.Context, userID int64, characterID, text, sender, photoURL string) (*dto.RecordMessageResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if sender != model.SenderUser && sender != model.SenderCharacter {
		return nil, shared.NewValidationError("Sender must be user or character", sender)
	}
	if strings.TrimSpace(text) == "" && photoURL == "" {
		return nil, shared.NewValidationError("Message text is required", nil)
	}
	if _, err := svc.character(ctx, characterID); err != nil {
		return nil, err
	}

	var (
		entry     model.ChatMessage
		leveledUp bool
		unlocked  bool
	)
	user, err := svc.mutate(ctx, userID, func(u *model.User) error {
		leveledUp, unlocked = false, false
		progression.EnsureDailyUsage(u, svc.today())
		limits := progression.LimitsFor(u.SubscriptionLevel)

		if sender == model.SenderUser && !progression.IsPhotoRequest(text) {
			if u.MessagesSentToday >= limits.Messages {
				recordQuotaRejection(shared.DailyLimitMessages)
				return shared.NewDailyLimitError(shared.DailyLimitMessages, limits.Messages)
			}
			u.MessagesSentToday++
			u.Sympathy[characterID] = progression.AddPoints(u.Sympathy[characterID], text)
			level, progress, up := progression.AdvanceLevel(u.CharacterLevel[characterID], u.CharacterLevelProgress[characterID])
			u.CharacterLevel[characterID] = level
			u.CharacterLevelProgress[characterID] = progress
			u.PhotoRequestPercent[characterID] = progression.RaisePhotoChance(u.PhotoRequestPercent[characterID])
			leveledUp = up
		}

		if sender == model.SenderCharacter && photoURL != "" {
			if u.PhotosRequestedToday >= limits.Photos {
				recordQuotaRejection(shared.DailyLimitPhotos)
				return shared.NewDailyLimitError(shared.DailyLimitPhotos, limits.Photos)
			}
			u.PhotosRequestedToday++
			unlocked = u.Unlock(characterID, photoURL)
			u.PhotoRequestPercent[characterID] = 0
		}

		entry = newChatMessage(text, sender, photoURL, svc.now())
		u.ChatHistory[characterID] = append(u.ChatHistory[characterID], entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordMessageMetric(sender)
	if leveledUp {
		recordLevelUp()
		log.WithFields(log.Fields{
			"user_id":      userID,
			"character_id": characterID,
			"level":        user.CharacterLevel[characterID],
		}).Info("Relationship level up")
	}
	if unlocked {
		recordPhotoUnlock("chat")
	}

	return &dto.RecordMessageResponse{
		Message:       svc.messageResponse(ctx, entry),
		ProgressStats: svc.stats(user, characterID, leveledUp),
	}, nil
}

func (svc *ProgressionService) GetHistory(ctx context.Context, userID int64, characterID string) ([]dto.ChatMessageResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if characterID == "" {
		return nil, shared.NewValidationError("Character id is required", nil)
	}

	user, err := svc.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, svc.storageError(err, userID)
	}

	history := user.ChatHistory[characterID]
	out := make([]dto.ChatMessageResponse, 0, len(history))
	for _, m := range history {
		out = append(out, svc.messageResponse(ctx, m))
	}
	return out, nil
}

// ClearHistory drops the whole conversation with one character. Affinity,
// level and unlocked photos are kept.
func (svc *ProgressionService) ClearHistory(ctx context.Context, userID int64, characterID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if characterID == "" {
		return shared.NewValidationError("Character id is required", nil)
	}

	_, err := svc.mutate(ctx, userID, func(u *model.User) error {
		if _, ok := u.ChatHistory[characterID]; !ok {
			return errSkipSave
		}
		delete(u.ChatHistory, characterID)
		return nil
	})
	return err
}

// RecalculateSympathy replaces the live score with a recency weighted
// replay of the conversation and stores it.
func (svc *ProgressionService) RecalculateSympathy(ctx context.Context, userID int64, characterID string) (float64, error) {
	if err := validateUserID(userID); err != nil {
		return 0, err
	}
	if characterID == "" {
		return 0, shared.NewValidationError("Character id is required", nil)
	}

	var score float64
	_, err := svc.mutate(ctx, userID, func(u *model.User) error {
		score = progression.Recalculate(u.ChatHistory[characterID], svc.now())
		u.Sympathy[characterID] = score
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// ==================== PHOTO METHODS ====================

// RequestPhotoByChance draws against the user's affinity. On success a
// photo the user has not unlocked yet is preferred. The daily photo quota
// is not consumed here.
func (svc *ProgressionService) RequestPhotoByChance(ctx context.Context, userID int64, characterID string) (*dto.PhotoChanceResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	c, err := svc.character(ctx, characterID)
	if err != nil {
		return nil, err
	}

	var (
		chance  float64
		granted *model.CharacterPhoto
	)
	_, err = svc.mutate(ctx, userID, func(u *model.User) error {
		granted = nil
		chance = min(100, u.Sympathy[characterID])

		draw := svc.rnd.Float64() * 100
		if draw >= chance || len(c.Photos) == 0 {
			return errSkipSave
		}

		pool := make([]model.CharacterPhoto, 0, len(c.Photos))
		for _, p := range c.Photos {
			if !u.HasUnlocked(characterID, p.URL) {
				pool = append(pool, p)
			}
		}
		if len(pool) == 0 {
			pool = c.Photos
		}
		pick := pool[svc.rnd.Intn(len(pool))]
		granted = &pick

		if !u.Unlock(characterID, pick.URL) {
			return errSkipSave
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.PhotoChanceResponse{ChancePercent: chance}
	if granted != nil {
		recordPhotoUnlock("chance")
		photo := svc.photo(ctx, granted.URL, granted.RequiredLevel)
		resp.Granted = true
		resp.Photo = &photo
	}
	return resp, nil
}

// UnlockPhotoWithCredits buys a photo for PhotoUnlockCost credits. Premium
// users unlock for free. Unlocking an owned photo charges nothing.
func (svc *ProgressionService) UnlockPhotoWithCredits(ctx context.Context, userID int64, characterID, photoKey string) (*dto.UnlockPhotoResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if photoKey == "" {
		return nil, shared.NewValidationError("Photo is required", nil)
	}
	c, err := svc.character(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if !c.HasPhoto(photoKey) {
		return nil, shared.NewNotFoundError(nil, "Photo not found")
	}

	alreadyUnlocked := false
	user, err := svc.mutate(ctx, userID, func(u *model.User) error {
		alreadyUnlocked = u.HasUnlocked(characterID, photoKey)
		if alreadyUnlocked {
			return errSkipSave
		}

		if u.SubscriptionLevel != shared.TierPremium {
			if u.Credits < shared.PhotoUnlockCost {
				return shared.NewInsufficientFundsError(shared.PhotoUnlockCost, u.Credits)
			}
			u.Credits -= shared.PhotoUnlockCost
		}
		u.Unlock(characterID, photoKey)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyUnlocked {
		recordPhotoUnlock("credits")
	}
	photo := svc.photo(ctx, photoKey, 0)
	return &dto.UnlockPhotoResponse{
		Unlocked:         true,
		AlreadyUnlocked:  alreadyUnlocked,
		Photo:            &photo,
		RemainingCredits: user.Credits,
	}, nil
}

// ==================== MISSION METHODS ====================

// ClaimMissionRewards marks missions completed and adds the reward. On the
// first claim of a day the completed set is replaced, otherwise merged.
// The reward is always credited, even for missions claimed before.
func (svc *ProgressionService) ClaimMissionRewards(ctx context.Context, userID int64, missionIDs []string, totalReward int) (*dto.MissionClaimResponse, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if totalReward < 0 {
		return nil, shared.NewValidationError("Reward must not be negative", nil)
	}

	user, err := svc.mutate(ctx, userID, func(u *model.User) error {
		today := svc.today()
		if u.DailyMissions.LastReset != today {
			u.DailyMissions.LastReset = today
			u.DailyMissions.Completed = dedupe(nil, missionIDs)
		} else {
			u.DailyMissions.Completed = dedupe(u.DailyMissions.Completed, missionIDs)
		}
		u.Credits += totalReward
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.MissionClaimResponse{
		Credits:       user.Credits,
		DailyMissions: user.DailyMissions,
	}, nil
}

// ==================== HELPERS ====================

// Snapshot loads a private copy of the user's record together with the
// character, for callers that read state without changing it.
func (svc *ProgressionService) Snapshot(ctx context.Context, userID int64, characterID string) (*model.User, *model.Character, error) {
	if err := validateUserID(userID); err != nil {
		return nil, nil, err
	}
	c, err := svc.character(ctx, characterID)
	if err != nil {
		return nil, nil, err
	}
	u, err := svc.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, svc.storageError(err, userID)
	}
	u.Normalize()
	return u, c, nil
}

// mutate runs fn against a freshly loaded record and saves the result.
// fn may run more than once when a concurrent writer wins the save, so it
// must only touch the record it is given and its own captured results.
func (svc *ProgressionService) mutate(ctx context.Context, userID int64, fn func(u *model.User) error) (*model.User, error) {
	for attempt := 1; ; attempt++ {
		user, err := svc.store.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, svc.storageError(err, userID)
		}

		if err := fn(user); err != nil {
			if errors.Is(err, errSkipSave) {
				return user, nil
			}
			return nil, err
		}

		err = svc.store.Save(ctx, user)
		if err == nil {
			return user, nil
		}
		if errors.Is(err, shared.ErrVersionConflict) && attempt < maxSaveAttempts {
			recordVersionConflict()
			log.WithFields(log.Fields{"user_id": userID, "attempt": attempt}).Debug("Progress save conflict, retrying")
			continue
		}
		return nil, svc.storageError(err, userID)
	}
}

func (svc *ProgressionService) character(ctx context.Context, characterID string) (*model.Character, error) {
	if characterID == "" {
		return nil, shared.NewValidationError("Character id is required", nil)
	}
	c, err := svc.catalog.GetByID(ctx, characterID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "Character not found")
		}
		return nil, svc.storageError(err, 0)
	}
	return c, nil
}

func (svc *ProgressionService) storageError(err error, userID int64) error {
	if _, ok := shared.GetAppError(err); ok {
		return err
	}
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(err, "User not found")
	}
	log.WithError(err).WithField("user_id", userID).Error("Progress storage failure")
	return shared.NewInternalError(err, "Progress storage unavailable")
}

func (svc *ProgressionService) today() string {
	return progression.Today(svc.now())
}

func (svc *ProgressionService) stats(u *model.User, characterID string, leveledUp bool) dto.ProgressStats {
	return dto.ProgressStats{
		Sympathy:             u.Sympathy[characterID],
		Level:                u.CharacterLevel[characterID],
		LevelProgress:        u.CharacterLevelProgress[characterID],
		LeveledUp:            leveledUp,
		PhotoRequestPercent:  u.PhotoRequestPercent[characterID],
		DailyLimitsRemaining: progression.Remaining(u),
	}
}

func (svc *ProgressionService) photo(ctx context.Context, key string, requiredLevel int) dto.Photo {
	return dto.Photo{
		Key:           key,
		URL:           svc.photos.ResolvePhotoURL(ctx, key),
		RequiredLevel: requiredLevel,
	}
}

func (svc *ProgressionService) messageResponse(ctx context.Context, m model.ChatMessage) dto.ChatMessageResponse {
	resp := dto.ChatMessageResponse{
		ID:        m.ID,
		Text:      m.Text,
		Sender:    m.Sender,
		Timestamp: epochMillis(m.Timestamp),
	}
	if m.PhotoURL != "" {
		photo := svc.photo(ctx, m.PhotoURL, 0)
		resp.Photo = &photo
	}
	return resp
}

func (svc *ProgressionService) characterResponse(ctx context.Context, c *model.Character) dto.CharacterResponse {
	return newCharacterResponse(ctx, svc.photos, c)
}

func newChatMessage(text, sender, photoURL string, now time.Time) model.ChatMessage {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return model.ChatMessage{
		ID:        id.String(),
		Text:      text,
		Sender:    sender,
		Timestamp: now,
		PhotoURL:  photoURL,
	}
}

func validateUserID(userID int64) error {
	if userID <= 0 {
		return shared.NewValidationError("User id is required", nil)
	}
	return nil
}

func epochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func dedupe(base, add []string) []string {
	out := make([]string, 0, len(base)+len(add))
	seen := make(map[string]bool, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, id := range list {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
