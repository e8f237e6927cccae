package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

const maxSaveAttempts = 3

type linkRepository interface {
	Save(ctx context.Context, shortCode, originalURL string, ownerID *uuid.UUID) (*entity.Link, error)
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Link, error)
	Deactivate(ctx context.Context, id int64) error
}

// LinkUseCase creates and resolves short links.
type LinkUseCase struct {
	repo      linkRepository
	generator *ShortCodeGenerator
	logger    *slog.Logger
}

func NewLinkUseCase(repo linkRepository, shortCodeLength int, logger *slog.Logger) *LinkUseCase {
	return &LinkUseCase{
		repo:      repo,
		generator: NewShortCodeGenerator(shortCodeLength, repo),
		logger:    logger,
	}
}

// ShortenURL validates originalURL and stores it under a freshly generated short code.
// A unique violation on insert means another request took the code between the
// existence check and the insert; a new code is generated in that case.
func (uc *LinkUseCase) ShortenURL(ctx context.Context, originalURL string, ownerID *uuid.UUID) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.ShortenURL"

	originalURL = strings.TrimSpace(originalURL)
	if err := ValidateURL(originalURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := 0; i < maxSaveAttempts; i++ {
		shortCode, err := uc.generator.Generate(ctx)
		if err != nil {
			if errors.Is(err, entity.ErrExhaustedRetries) {
				uc.logger.Error("short code space exhausted", slog.String("op", op), slog.Any("err", err))
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		link, err := uc.repo.Save(ctx, shortCode, originalURL, ownerID)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to save link: %w", op, err)
		}

		uc.logger.Info("link created", slog.String("short_code", link.ShortCode))

		return link, nil
	}

	uc.logger.Error("short code space exhausted", slog.String("op", op))

	return nil, fmt.Errorf("%s: %w", op, entity.ErrExhaustedRetries)
}

// ResolveShortCode returns the active link behind shortCode or entity.ErrLinkNotFound.
func (uc *LinkUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.ResolveShortCode"

	link, err := uc.repo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return link, nil
}

func (uc *LinkUseCase) ListOwnerLinks(ctx context.Context, ownerID uuid.UUID) ([]*entity.Link, error) {
	const op = "usecase.LinkUseCase.ListOwnerLinks"

	links, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, nil
}

// DeactivateLink soft-removes a link. Only its owner may do so.
func (uc *LinkUseCase) DeactivateLink(ctx context.Context, shortCode string, ownerID uuid.UUID) error {
	const op = "usecase.LinkUseCase.DeactivateLink"

	link, err := uc.repo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to retrieve link: %w", op, err)
	}

	if link.OwnerID == nil || *link.OwnerID != ownerID {
		return fmt.Errorf("%s: %w", op, entity.ErrForbidden)
	}

	if err := uc.repo.Deactivate(ctx, link.ID); err != nil {
		return fmt.Errorf("%s: failed to deactivate link: %w", op, err)
	}

	uc.logger.Info("link deactivated", slog.String("short_code", shortCode))

	return nil
}

// ValidateURL rejects empty URLs, URLs longer than entity.MaxURLLength and
// anything that is not an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	switch {
	case strings.TrimSpace(rawURL) == "":
		return fmt.Errorf("url cannot be empty: %w", entity.ErrInvalidURL)
	case len(rawURL) > entity.MaxURLLength:
		return fmt.Errorf("url is too long (max %d characters): %w", entity.MaxURLLength, entity.ErrInvalidURL)
	case !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://"):
		return fmt.Errorf("url must start with http:// or https://: %w", entity.ErrInvalidURL)
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid url format: %w", entity.ErrInvalidURL)
	}

	return nil
}
