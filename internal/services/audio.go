package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vmcandles/commerce-api/internal/models"
)

type AudioRepository interface {
	ListAudioContent(ctx context.Context, category string, isPreview *bool) ([]models.AudioContent, error)
	GetAudioContent(ctx context.Context, id string) (*models.AudioContent, error)
	CreateAudioContent(ctx context.Context, req models.AudioContentRequest) (string, error)
	UpdateAudioContent(ctx context.Context, id string, req models.AudioContentRequest) error
	DeleteAudioContent(ctx context.Context, id string) error

	CreateAccessKeys(ctx context.Context, keys []models.AudioAccessKey) error
	GetAccessKeyByCode(ctx context.Context, keyCode string) (*models.AudioAccessKey, error)
	RedeemAccessKey(ctx context.Context, id, userID string, redeemedAt, expiresAt time.Time) error
	GetValidAccessKey(ctx context.Context, userID string, now time.Time) (*models.AudioAccessKey, error)
	ListAccessKeys(ctx context.Context, redeemed *bool) ([]models.AudioAccessKey, error)

	GetUnexpiredSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error)
}

// Library is the per-user view of the audio catalog.
type Library struct {
	HasSubscription bool                  `json:"hasSubscription"`
	HasAccessKey    bool                  `json:"hasAccessKey"`
	PlanID          string                `json:"planId,omitempty"`
	Items           []models.AudioContent `json:"items"`
}

// StreamGrant is a successful streaming authorization.
type StreamGrant struct {
	StreamURL string              `json:"streamUrl"`
	Audio     models.AudioContent `json:"audio"`
}

// AudioService gates the guided-experience audio library behind
// subscriptions and redeemable access keys.
type AudioService struct {
	repo AudioRepository
	log  *slog.Logger
}

func NewAudioService(repo AudioRepository, log *slog.Logger) *AudioService {
	return &AudioService{repo: repo, log: log}
}

// libraryCanAccess is the gate used when rendering the library view.
// It deliberately differs from streamPlanSatisfies: here QUARTERLY
// unlocks any track not tagged ANNUAL, including untagged ones.
func libraryCanAccess(planID, requiredPlan string) bool {
	return requiredPlan == "" ||
		requiredPlan == planID ||
		planID == "ANNUAL" ||
		(planID == "QUARTERLY" && requiredPlan != "ANNUAL")
}

// streamPlanSatisfies is the gate used when a single track is
// streamed. QUARTERLY only unlocks MONTHLY-tagged tracks here.
func streamPlanSatisfies(planID, requiredPlan string) bool {
	return planID == requiredPlan ||
		planID == "ANNUAL" ||
		(planID == "QUARTERLY" && requiredPlan == "MONTHLY")
}

// entitlement resolves the caller's plan from an unexpired
// subscription or a redeemed access key, in that order.
func (s *AudioService) entitlement(ctx context.Context, userID string, now time.Time) (planID string, hasSub, hasKey bool, err error) {
	sub, err := s.repo.GetUnexpiredSubscription(ctx, userID, now)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", false, false, err
	}
	if sub != nil && err == nil {
		hasSub = true
		planID = sub.PlanID
	}

	key, err := s.repo.GetValidAccessKey(ctx, userID, now)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", false, false, err
	}
	if key != nil && err == nil {
		hasKey = true
		if planID == "" {
			planID = key.PlanID
		}
	}
	return planID, hasSub, hasKey, nil
}

// ListPublic returns the catalog with file URLs stripped from
// non-preview tracks. Anonymous browsing sees what exists, not where
// it streams from.
func (s *AudioService) ListPublic(ctx context.Context, category string) ([]models.AudioContent, error) {
	items, err := s.repo.ListAudioContent(ctx, category, nil)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].CanAccess = items[i].IsPreview
		if !items[i].IsPreview {
			items[i].FileURL = ""
		}
	}
	return items, nil
}

// GetPublic returns one track with the file URL hidden unless it is a
// preview.
func (s *AudioService) GetPublic(ctx context.Context, id string) (*models.AudioContent, error) {
	audio, err := s.repo.GetAudioContent(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	audio.CanAccess = audio.IsPreview
	if !audio.IsPreview {
		audio.FileURL = ""
	}
	return audio, nil
}

// MyLibrary returns the catalog annotated with the caller's access.
func (s *AudioService) MyLibrary(ctx context.Context, userID string) (*Library, error) {
	now := time.Now().UTC()
	planID, hasSub, hasKey, err := s.entitlement(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	hasAccess := hasSub || hasKey

	items, err := s.repo.ListAudioContent(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	for i := range items {
		canAccess := items[i].IsPreview ||
			(hasAccess && libraryCanAccess(planID, items[i].RequiredPlan))
		items[i].CanAccess = canAccess
		if !canAccess {
			items[i].FileURL = ""
		}
	}

	return &Library{
		HasSubscription: hasSub,
		HasAccessKey:    hasKey,
		PlanID:          planID,
		Items:           items,
	}, nil
}

// Stream authorizes playback of one track. userID is empty for
// anonymous callers, who only get previews.
func (s *AudioService) Stream(ctx context.Context, audioID, userID string) (*StreamGrant, error) {
	audio, err := s.repo.GetAudioContent(ctx, audioID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if audio.IsPreview {
		audio.CanAccess = true
		return &StreamGrant{StreamURL: audio.FileURL, Audio: *audio}, nil
	}
	if userID == "" {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	planID, hasSub, hasKey, err := s.entitlement(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if !hasSub && !hasKey {
		return nil, ErrForbidden
	}
	if audio.RequiredPlan != "" && !streamPlanSatisfies(planID, audio.RequiredPlan) {
		return nil, ErrUpgradeRequired
	}

	audio.CanAccess = true
	return &StreamGrant{StreamURL: audio.FileURL, Audio: *audio}, nil
}

// RedeemKey consumes a one-time access code for the caller.
func (s *AudioService) RedeemKey(ctx context.Context, userID string, req models.RedeemKeyRequest) (*models.AudioAccessKey, error) {
	code := strings.ToUpper(strings.TrimSpace(req.KeyCode))
	key, err := s.repo.GetAccessKeyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if key.RedeemedBy != "" {
		return nil, ErrKeyRedeemed
	}

	now := time.Now().UTC()
	expires := now.AddDate(0, key.DurationMonths, 0)
	if err := s.repo.RedeemAccessKey(ctx, key.ID, userID, now, expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyRedeemed
		}
		return nil, err
	}

	s.log.Info("redeemed access key", slog.String("key_id", key.ID))
	key.RedeemedBy = userID
	key.RedeemedAt = &now
	key.ExpiresAt = &expires
	return key, nil
}

const keyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomKeySegment(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyCodeAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = keyCodeAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// GenerateKeys mints a batch of unredeemed access codes.
func (s *AudioService) GenerateKeys(ctx context.Context, req models.GenerateKeysRequest) ([]models.AudioAccessKey, error) {
	keys := make([]models.AudioAccessKey, 0, req.Count)
	for range req.Count {
		first, err := randomKeySegment(5)
		if err != nil {
			return nil, err
		}
		second, err := randomKeySegment(5)
		if err != nil {
			return nil, err
		}
		keys = append(keys, models.AudioAccessKey{
			ID:             uuid.NewString(),
			KeyCode:        fmt.Sprintf("VM-%s-%s", first, second),
			PlanID:         req.PlanID,
			DurationMonths: req.DurationMonths,
			Notes:          req.Notes,
		})
	}
	if err := s.repo.CreateAccessKeys(ctx, keys); err != nil {
		return nil, err
	}
	s.log.Info("generated access keys", slog.Int("count", len(keys)))
	return keys, nil
}

// ListKeys is the admin key inventory.
func (s *AudioService) ListKeys(ctx context.Context, redeemed *bool) ([]models.AudioAccessKey, error) {
	return s.repo.ListAccessKeys(ctx, redeemed)
}

// CreateContent adds a track to the library.
func (s *AudioService) CreateContent(ctx context.Context, req models.AudioContentRequest) (*models.AudioContent, error) {
	id, err := s.repo.CreateAudioContent(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("created audio content", slog.String("audio_id", id))
	return s.repo.GetAudioContent(ctx, id)
}

func (s *AudioService) UpdateContent(ctx context.Context, id string, req models.AudioContentRequest) (*models.AudioContent, error) {
	if err := s.repo.UpdateAudioContent(ctx, id, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.GetAudioContent(ctx, id)
}

func (s *AudioService) DeleteContent(ctx context.Context, id string) error {
	if err := s.repo.DeleteAudioContent(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
