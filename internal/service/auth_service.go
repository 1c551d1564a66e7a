package service

import (
	"context"
	"fmt"
	"time"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	hashSvc     ports.HashService
	encSvc      ports.EncryptionService
	tokenSvc    ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	hashSvc ports.HashService,
	encSvc ports.EncryptionService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		hashSvc:     hashSvc,
		encSvc:      encSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register creates a new account with an empty wallet. Admin accounts
// cannot be self-registered; the administrator is provisioned out of
// band and named in configuration.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResponse, error) {
	if req.Role != domain.RoleProducer && req.Role != domain.RoleTrader {
		return nil, apperror.Validation("role must be PRODUCER or TRADER")
	}

	existing, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	// Hash password with Argon2id
	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
		Role:         req.Role,
		WebhookURL:   req.WebhookURL,
		Status:       domain.AccountStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	// Encrypt initial balance (0)
	encryptedBalance, err := s.encSvc.Encrypt("0")
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt initial balance: %w", err))
	}

	wallet := &domain.Wallet{
		ID:               uuid.New(),
		AccountID:        account.ID,
		Currency:         "EUR",
		EncryptedBalance: encryptedBalance,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	return &ports.RegisterResponse{
		AccountID: account.ID,
		Role:      account.Role,
	}, nil
}

// Login validates credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	if !account.IsActive() {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(account.ID, account.Role)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return token, expiry, nil
}
