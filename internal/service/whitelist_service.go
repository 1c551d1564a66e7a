package service

import (
	"context"
	"fmt"
	"time"

	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const whitelistCacheTTL = 5 * time.Minute

// WhitelistServiceImpl implements ports.WhitelistService. The administrator
// principal is fixed at construction; only it may mutate membership.
type WhitelistServiceImpl struct {
	repo  ports.WhitelistRepository
	cache ports.WhitelistCache
	admin uuid.UUID
	log   zerolog.Logger
}

// NewWhitelistService creates a new WhitelistServiceImpl.
// cache may be nil, in which case every lookup hits the database.
func NewWhitelistService(
	repo ports.WhitelistRepository,
	cache ports.WhitelistCache,
	admin uuid.UUID,
	log zerolog.Logger,
) *WhitelistServiceImpl {
	return &WhitelistServiceImpl{
		repo:  repo,
		cache: cache,
		admin: admin,
		log:   log,
	}
}

// AddAddress adds a principal to the trading whitelist. Idempotent:
// adding an existing member succeeds as a no-op.
func (s *WhitelistServiceImpl) AddAddress(ctx context.Context, caller, principal uuid.UUID) error {
	if caller != s.admin {
		return apperror.ErrUnauthorized()
	}

	if err := s.repo.Add(ctx, principal, caller); err != nil {
		return apperror.InternalError(fmt.Errorf("whitelist add: %w", err))
	}
	s.invalidate(ctx, principal)

	s.log.Info().
		Str("principal", principal.String()).
		Msg("principal whitelisted")
	return nil
}

// RemoveAddress removes a principal from the trading whitelist. Idempotent:
// removing an absent principal succeeds as a no-op.
func (s *WhitelistServiceImpl) RemoveAddress(ctx context.Context, caller, principal uuid.UUID) error {
	if caller != s.admin {
		return apperror.ErrUnauthorized()
	}

	if err := s.repo.Remove(ctx, principal); err != nil {
		return apperror.InternalError(fmt.Errorf("whitelist remove: %w", err))
	}
	s.invalidate(ctx, principal)

	s.log.Info().
		Str("principal", principal.String()).
		Msg("principal removed from whitelist")
	return nil
}

// IsWhitelisted reports membership. Reads through the cache; a cache
// failure falls back to the database.
func (s *WhitelistServiceImpl) IsWhitelisted(ctx context.Context, principal uuid.UUID) (bool, error) {
	if s.cache != nil {
		member, found, err := s.cache.Get(ctx, principal)
		if err != nil {
			s.log.Warn().Err(err).Msg("whitelist cache read failed, falling through to DB")
		} else if found {
			return member, nil
		}
	}

	member, err := s.repo.Contains(ctx, principal)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("whitelist lookup: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, principal, member, whitelistCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("whitelist cache write failed")
		}
	}
	return member, nil
}

func (s *WhitelistServiceImpl) invalidate(ctx context.Context, principal uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, principal); err != nil {
		s.log.Warn().Err(err).Str("principal", principal.String()).Msg("whitelist cache invalidation failed")
	}
}
