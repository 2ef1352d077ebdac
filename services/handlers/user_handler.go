package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

type UserHandler struct {
	progressionSvc ProgressionServiceInterface
}

func NewUserHandler(progressionSvc ProgressionServiceInterface) *UserHandler {
	return &UserHandler{progressionSvc: progressionSvc}
}

// @Summary Get user
// @Description Returns the caller's progression record, creating it on first use
// @Tags user
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.UserResponse}
// @Router /api/v1/user [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.progressionSvc.GetOrCreateUser(c.UserContext(), userID, "", "")
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, user)
}

// @Summary Get entitlements
// @Description Subscription, credits, unlocked photos and remaining daily quota
// @Tags user
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.EntitlementsResponse}
// @Router /api/v1/user/entitlements [get]
func (h *UserHandler) GetEntitlements(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	ent, err := h.progressionSvc.GetEntitlements(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, ent)
}

// @Summary List candidates
// @Description Characters to show in the swipe deck
// @Tags user
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=[]dto.CharacterResponse}
// @Router /api/v1/user/candidates [get]
func (h *UserHandler) ListCandidates(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	candidates, err := h.progressionSvc.ListCandidates(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, candidates)
}

// @Summary List matches
// @Description Liked characters, most recent conversation first
// @Tags user
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=[]dto.MatchSummary}
// @Router /api/v1/user/matches [get]
func (h *UserHandler) ListMatches(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	matches, err := h.progressionSvc.ListMatches(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, matches)
}

// @Summary Like or pass
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param matchRequest body dto.MatchActionRequest true "Swipe action"
// @Success 200 {object} shared.Response
// @Router /api/v1/user/matches [post]
func (h *UserHandler) RecordMatchAction(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.MatchActionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.progressionSvc.RecordMatchAction(c.UserContext(), userID, req.CharacterID, req.Action); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Recorded", nil)
}

// @Summary Select character
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param selectRequest body dto.SelectCharacterRequest true "Character to open"
// @Success 200 {object} shared.Response{data=dto.UserResponse}
// @Router /api/v1/user/select [post]
func (h *UserHandler) SelectCharacter(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.SelectCharacterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.progressionSvc.SelectCharacter(c.UserContext(), userID, req.CharacterID)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, user)
}

// @Summary Add credits
// @Description Demo only
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param creditsRequest body dto.AddCreditsRequest true "Credits to add"
// @Success 200 {object} shared.Response{data=map[string]int}
// @Router /api/v1/user/credits [post]
func (h *UserHandler) AddCredits(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.AddCreditsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	credits, err := h.progressionSvc.AddCredits(c.UserContext(), userID, req.Amount)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, fiber.Map{"credits": credits})
}

// @Summary Set subscription
// @Description Demo only
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param subscriptionRequest body dto.SubscriptionRequest true "Tier"
// @Success 200 {object} shared.Response{data=dto.EntitlementsResponse}
// @Router /api/v1/user/subscription [post]
func (h *UserHandler) SetSubscription(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.SubscriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ent, err := h.progressionSvc.SetSubscriptionLevel(c.UserContext(), userID, req.Tier)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, ent)
}

// @Summary Claim mission rewards
// @Tags missions
// @Accept json
// @Produce json
// @Security Bearer
// @Param claimRequest body dto.ClaimMissionsRequest true "Completed missions"
// @Success 200 {object} shared.Response{data=dto.MissionClaimResponse}
// @Router /api/v1/missions/claim [post]
func (h *UserHandler) ClaimMissions(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ClaimMissionsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.progressionSvc.ClaimMissionRewards(c.UserContext(), userID, req.MissionIDs, req.TotalReward)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}
