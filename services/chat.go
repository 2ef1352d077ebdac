package services

import (
	"context"
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/ven_companion/ai"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/progression"
	"github.com/lac-hong-legacy/ven_companion/shared"
	log "github.com/sirupsen/logrus"
)

const CHAT_SVC = "chat_svc"

const (
	replyRateLimited    = "I'm a little overwhelmed right now. Give me a minute and write again?"
	replyGenerationFail = "Sorry, I lost my train of thought. Could you say that again?"
	replyStorageFail    = "Something went wrong on my side. Could you send that again?"
	replyPhotoSent      = "Here's one just for you."
	replyPhotoTooEarly  = "Hmm, I don't know you well enough for that yet. Talk to me a bit more first."
	replyPhotoQuota     = "That's enough photos for today. Ask me again tomorrow?"
)

type conversationEngine interface {
	RecordMessage(ctx context.Context, userID int64, characterID, text, sender, photoURL string) (*dto.RecordMessageResponse, error)
	Snapshot(ctx context.Context, userID int64, characterID string) (*model.User, *model.Character, error)
}

// ChatService runs one conversation turn: the user's message is recorded,
// then answered either with a photo or with a generated reply.
type ChatService struct {
	appContext.DefaultService

	engine   conversationEngine
	provider ai.Provider
	rnd      RandomSource
}

func NewChatService(engine conversationEngine, provider ai.Provider, rnd RandomSource) *ChatService {
	if rnd == nil {
		rnd = newDefaultRandomSource()
	}
	return &ChatService{engine: engine, provider: provider, rnd: rnd}
}

func (svc ChatService) Id() string {
	return CHAT_SVC
}

func (svc *ChatService) Configure(ctx *appContext.Context) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.AIAPIKey == "" {
		log.Warn("AI_API_KEY not set, replies depend on an unauthenticated endpoint")
	}
	svc.provider = ai.NewOpenAIProvider(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
	svc.rnd = newDefaultRandomSource()
	return svc.DefaultService.Configure(ctx)
}

func (svc *ChatService) Start() error {
	svc.engine = svc.Service(PROGRESSION_SVC).(*ProgressionService)
	return nil
}

// SendMessage records text from the user and answers it. Only errors from
// recording the user's message (quota, validation, unknown character) are
// returned. Anything failing after that yields Success false and a reply
// that was not stored.
func (svc *ChatService) SendMessage(ctx context.Context, userID int64, characterID, text string) (*dto.SendMessageResponse, error) {
	sent, err := svc.engine.RecordMessage(ctx, userID, characterID, text, model.SenderUser, "")
	if err != nil {
		return nil, err
	}

	if progression.IsPhotoRequest(text) {
		return svc.sendPhoto(ctx, userID, characterID, sent)
	}

	user, character, err := svc.engine.Snapshot(ctx, userID, characterID)
	if err != nil {
		return svc.storageFallback(userID, characterID, sent, "", err), nil
	}

	history := historyBefore(user.ChatHistory[characterID], sent.Message.ID)
	messages := ai.BuildConversation(character, user.Sympathy[characterID], history, text)

	start := time.Now()
	reply, err := svc.provider.Generate(ctx, messages)
	if err != nil {
		return svc.fallback(userID, characterID, sent, err, time.Since(start)), nil
	}
	recordGatewaySuccess(time.Since(start))

	answered, err := svc.engine.RecordMessage(ctx, userID, characterID, reply, model.SenderCharacter, "")
	if err != nil {
		return svc.storageFallback(userID, characterID, sent, reply, err), nil
	}

	stats := answered.ProgressStats
	stats.LeveledUp = sent.LeveledUp
	return &dto.SendMessageResponse{
		Success:     true,
		UserMessage: sent.Message,
		Reply:       answered.Message,
		Stats:       stats,
	}, nil
}

func (svc *ChatService) sendPhoto(ctx context.Context, userID int64, characterID string, sent *dto.RecordMessageResponse) (*dto.SendMessageResponse, error) {
	user, character, err := svc.engine.Snapshot(ctx, userID, characterID)
	if err != nil {
		return svc.storageFallback(userID, characterID, sent, "", err), nil
	}

	photo, ok := svc.pickPhoto(user, character)
	var answered *dto.RecordMessageResponse
	if ok {
		answered, err = svc.engine.RecordMessage(ctx, userID, characterID, replyPhotoSent, model.SenderCharacter, photo.URL)
		if errors.Is(err, shared.ErrDailyLimitExceeded) {
			answered, err = svc.engine.RecordMessage(ctx, userID, characterID, replyPhotoQuota, model.SenderCharacter, "")
		}
	} else {
		answered, err = svc.engine.RecordMessage(ctx, userID, characterID, replyPhotoTooEarly, model.SenderCharacter, "")
	}
	if err != nil {
		return svc.storageFallback(userID, characterID, sent, "", err), nil
	}

	return &dto.SendMessageResponse{
		Success:     true,
		UserMessage: sent.Message,
		Reply:       answered.Message,
		Stats:       answered.ProgressStats,
	}, nil
}

// pickPhoto chooses among photos the current affinity tier allows,
// preferring ones the user has not unlocked yet.
func (svc *ChatService) pickPhoto(user *model.User, character *model.Character) (model.CharacterPhoto, bool) {
	tier := progression.AffinityTier(user.Sympathy[character.ID])

	var fresh, seen []model.CharacterPhoto
	for _, p := range character.Photos {
		if p.RequiredLevel > tier {
			continue
		}
		if user.HasUnlocked(character.ID, p.URL) {
			seen = append(seen, p)
		} else {
			fresh = append(fresh, p)
		}
	}

	pool := fresh
	if len(pool) == 0 {
		pool = seen
	}
	if len(pool) == 0 {
		return model.CharacterPhoto{}, false
	}
	return pool[svc.rnd.Intn(len(pool))], true
}

func (svc *ChatService) fallback(userID int64, characterID string, sent *dto.RecordMessageResponse, cause error, took time.Duration) *dto.SendMessageResponse {
	code, text, reason := shared.CodeGenerationFailed, replyGenerationFail, "generation"
	if errors.Is(cause, ai.ErrRateLimited) {
		code, text, reason = shared.CodeRateLimited, replyRateLimited, "rate_limited"
	} else if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		reason = "timeout"
	}
	recordGatewayFailure(reason, took)

	log.WithError(cause).WithFields(log.Fields{
		"user_id":      userID,
		"character_id": characterID,
		"reason":       reason,
	}).Warn("Reply generation failed")

	return unsavedReply(sent, code, text)
}

// storageFallback answers after the user's message was stored but the turn
// could not be completed. A generated reply is still shown when there is one.
func (svc *ChatService) storageFallback(userID int64, characterID string, sent *dto.RecordMessageResponse, reply string, cause error) *dto.SendMessageResponse {
	log.WithError(cause).WithFields(log.Fields{
		"user_id":      userID,
		"character_id": characterID,
		"generated":    reply != "",
	}).Error("Conversation turn could not be stored")

	if reply == "" {
		reply = replyStorageFail
	}
	return unsavedReply(sent, shared.CodeStorageFailed, reply)
}

func unsavedReply(sent *dto.RecordMessageResponse, code, text string) *dto.SendMessageResponse {
	return &dto.SendMessageResponse{
		Success:     false,
		Error:       code,
		UserMessage: sent.Message,
		Reply: dto.ChatMessageResponse{
			Text:      text,
			Sender:    model.SenderCharacter,
			Timestamp: sent.Message.Timestamp,
		},
		Stats: sent.ProgressStats,
	}
}

// historyBefore returns the entries preceding the message with the given id
func historyBefore(history []model.ChatMessage, id string) []model.ChatMessage {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].ID == id {
			return history[:i]
		}
	}
	return history
}
