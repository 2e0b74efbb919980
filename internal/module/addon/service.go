package addon

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wishloop/server/internal/module/addon/provider"
	"github.com/wishloop/server/internal/module/billing"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"go.uber.org/zap"
)

// PlanSource resolves a user's effective plan tier. Implemented by the
// billing entitlement gate.
type PlanSource interface {
	PlanKeyFor(ctx context.Context, userID uuid.UUID) (billing.PlanKey, error)
}

// Service provides add-on catalog and generation operations.
type Service struct {
	repo      Repository
	generator provider.Generator
	plans     PlanSource
	maxCount  int
	logger    *zap.Logger
}

// NewService creates a new add-on service.
func NewService(repo Repository, generator provider.Generator, plans PlanSource, maxCount int, logger *zap.Logger) *Service {
	if maxCount <= 0 {
		maxCount = 20
	}
	return &Service{
		repo:      repo,
		generator: generator,
		plans:     plans,
		maxCount:  maxCount,
		logger:    logger,
	}
}

// --- Catalog ---

// List returns add-ons. Non-admin callers see only enabled ones.
func (s *Service) List(ctx context.Context, includeDisabled bool) ([]*AddOn, error) {
	return s.repo.List(ctx, !includeDisabled)
}

// Get returns an add-on by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*AddOn, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug returns an add-on by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*AddOn, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// --- Generation ---

// Stream is an open generation stream plus the add-on that produced it.
type Stream struct {
	AddOn  *AddOn
	Chunks <-chan provider.Chunk
}

// GenerateStream validates the request, resolves add-on policy, and
// opens a generation stream. The flow is: validate input, look up the
// add-on, check enablement and access policy, compose the prompt, then
// call upstream. No upstream call is made for any rejected request.
// userID is uuid.Nil for anonymous callers.
func (s *Service) GenerateStream(ctx context.Context, userID uuid.UUID, req *GenerateRequest) (*Stream, error) {
	if len(strings.TrimSpace(req.Prompt)) < minPromptLength {
		return nil, ErrPromptTooShort
	}
	if req.Count < 0 || req.Count > s.maxCount {
		return nil, ErrInvalidCount
	}

	addOn, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !addOn.IsEnabled {
		return nil, ErrAddOnDisabled
	}

	if addOn.RequiresAuth && userID == uuid.Nil {
		return nil, apperrors.Unauthorized("authentication required for this add-on")
	}

	if addOn.IsPremium {
		if err := s.checkPremiumAccess(ctx, userID); err != nil {
			return nil, err
		}
	}

	count := req.Count
	if count == 0 {
		count = addOn.DefaultCount
	}

	composed := Compose(addOn, req.Prompt, count, req.Fields)

	chunks, err := s.generator.Generate(ctx, provider.Request{
		System: composed.System,
		User:   composed.User,
		Count:  count,
	})
	if err != nil {
		s.logger.Error("generation failed to start",
			zap.String("addon", addOn.Slug),
			zap.Error(err),
		)
		return nil, fmt.Errorf("start generation: %w", err)
	}

	s.logger.Info("generation started",
		zap.String("addon", addOn.Slug),
		zap.String("user_id", userID.String()),
		zap.Int("count", count),
	)
	return &Stream{AddOn: addOn, Chunks: chunks}, nil
}

func (s *Service) checkPremiumAccess(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.Unauthorized("authentication required for premium add-ons")
	}

	planKey, err := s.plans.PlanKeyFor(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve plan: %w", err)
	}
	if planKey == billing.PlanFree {
		return ErrPremiumRequired
	}
	return nil
}

// --- Admin ---

// Create creates an add-on.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*AddOn, error) {
	if existing, err := s.repo.GetBySlug(ctx, req.Slug); err == nil && existing != nil {
		return nil, ErrSlugAlreadyExists
	}

	if err := validatePrompts(req.SystemPrompt, req.CustomPrompt); err != nil {
		return nil, err
	}

	addOn := &AddOn{
		ID:           uuid.New(),
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Icon:         req.Icon,
		Category:     req.Category,
		IsEnabled:    true,
		IsPremium:    req.IsPremium,
		RequiresAuth: true,
		SystemPrompt: req.SystemPrompt,
		CustomPrompt: req.CustomPrompt,
		DefaultCount: req.DefaultCount,
	}
	if req.IsEnabled != nil {
		addOn.IsEnabled = *req.IsEnabled
	}
	if req.RequiresAuth != nil {
		addOn.RequiresAuth = *req.RequiresAuth
	}
	if addOn.DefaultCount == 0 {
		addOn.DefaultCount = 5
	}

	if err := s.repo.Create(ctx, addOn); err != nil {
		return nil, fmt.Errorf("create add-on: %w", err)
	}

	s.logger.Info("add-on created", zap.String("slug", addOn.Slug))
	return addOn, nil
}

// Update applies partial updates to an add-on.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*AddOn, error) {
	addOn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validatePrompts(req.SystemPrompt, req.CustomPrompt); err != nil {
		return nil, err
	}

	if req.Name != nil {
		addOn.Name = *req.Name
	}
	if req.Description != nil {
		addOn.Description = *req.Description
	}
	if req.Icon != nil {
		addOn.Icon = *req.Icon
	}
	if req.Category != nil {
		addOn.Category = *req.Category
	}
	if req.IsEnabled != nil {
		addOn.IsEnabled = *req.IsEnabled
	}
	if req.IsPremium != nil {
		addOn.IsPremium = *req.IsPremium
	}
	if req.RequiresAuth != nil {
		addOn.RequiresAuth = *req.RequiresAuth
	}
	if req.SystemPrompt != nil {
		addOn.SystemPrompt = req.SystemPrompt
	}
	if req.CustomPrompt != nil {
		addOn.CustomPrompt = req.CustomPrompt
	}
	if req.DefaultCount != nil {
		addOn.DefaultCount = *req.DefaultCount
	}

	if err := s.repo.Update(ctx, addOn); err != nil {
		return nil, fmt.Errorf("update add-on: %w", err)
	}
	return addOn, nil
}

// Delete soft deletes an add-on.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

// validatePrompts enforces the minimum length on stored prompts. Empty
// strings are allowed and treated as unset.
func validatePrompts(prompts ...*string) error {
	for _, p := range prompts {
		if p == nil || *p == "" {
			continue
		}
		if len(strings.TrimSpace(*p)) < minPromptLength {
			return ErrPromptTooShort
		}
	}
	return nil
}
