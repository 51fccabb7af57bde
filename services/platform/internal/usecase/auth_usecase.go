package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/pkg/jwt"
	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/repo"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	walletNonceTTL    = 10 * time.Minute
)

// SignatureVerifier checks that signature was produced by address over
// message. Signing itself happens in the client's wallet.
type SignatureVerifier interface {
	Verify(address, message, signature string) (bool, error)
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

type Profile struct {
	User    *entity.User    `json:"user"`
	Creator *entity.Creator `json:"creator,omitempty"`
}

type AuthUseCase interface {
	Register(ctx context.Context, email, password, displayName string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	IssueWalletNonce(ctx context.Context, userID, address string) (*entity.WalletNonce, string, error)
	VerifyWallet(ctx context.Context, userID, address, signature string) (*entity.User, error)
}

type authUseCase struct {
	store      repo.Store
	jwtService *jwt.Service
	verifier   SignatureVerifier
	logger     *logger.Logger
	now        func() time.Time
}

func NewAuthUseCase(store repo.Store, jwtService *jwt.Service, verifier SignatureVerifier, logger *logger.Logger, opts ...Option) AuthUseCase {
	o := buildOptions(opts)
	return &authUseCase{
		store:      store,
		jwtService: jwtService,
		verifier:   verifier,
		logger:     logger,
		now:        o.now,
	}
}

func (uc *authUseCase) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		Role:         entity.RoleSupporter,
	}
	if err := uc.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, invalid("email is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	uc.logger.Info("User registered: %s", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.AuthenticationRequired, "Invalid email or password")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.New(apperror.AuthenticationRequired, "Invalid email or password")
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (uc *authUseCase) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	user, err := uc.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookup(err, "User")
	}

	profile := &Profile{User: user}
	creator, err := uc.store.GetCreatorByUserID(ctx, userID)
	switch {
	case err == nil:
		profile.Creator = creator
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	return profile, nil
}

// WalletMessage is the text the wallet owner signs to prove control.
func WalletMessage(nonce string) string {
	return "Sign this message to verify your wallet: " + nonce
}

func normalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if len(address) < 3 || len(address) > 64 {
		return "", invalid("wallet address is invalid")
	}
	return address, nil
}

// IssueWalletNonce stores a fresh nonce for address and returns it with
// the message to sign. A newer nonce replaces any pending one.
func (uc *authUseCase) IssueWalletNonce(ctx context.Context, userID, address string) (*entity.WalletNonce, string, error) {
	if err := requireViewer(userID); err != nil {
		return nil, "", err
	}
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, "", err
	}

	nonce := &entity.WalletNonce{
		Address:   address,
		Nonce:     uuid.New().String(),
		ExpiresAt: uc.now().UTC().Add(walletNonceTTL),
	}
	if err := uc.store.UpsertWalletNonce(ctx, nonce); err != nil {
		return nil, "", fmt.Errorf("failed to store wallet nonce: %w", err)
	}
	return nonce, WalletMessage(nonce.Nonce), nil
}

// VerifyWallet consumes the pending nonce and links address to the user
// when the signature checks out.
func (uc *authUseCase) VerifyWallet(ctx context.Context, userID, address, signature string) (*entity.User, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	if uc.verifier == nil {
		return nil, apperror.New(apperror.Internal, "wallet verification is not configured")
	}
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}

	nonce, err := uc.store.GetWalletNonce(ctx, address)
	if err != nil {
		return nil, lookup(err, "Wallet nonce")
	}
	if !uc.now().Before(nonce.ExpiresAt) {
		_ = uc.store.DeleteWalletNonce(ctx, address)
		return nil, invalid("wallet nonce expired, request a new one")
	}

	ok, err := uc.verifier.Verify(address, WalletMessage(nonce.Nonce), signature)
	if err != nil {
		return nil, fmt.Errorf("failed to verify signature: %w", err)
	}
	if !ok {
		return nil, apperror.New(apperror.AccessDenied, "Signature does not match wallet")
	}

	var user *entity.User
	err = uc.store.WithTx(ctx, func(tx repo.Store) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return lookup(err, "User")
		}
		owner, err := tx.GetUserByWallet(ctx, address)
		switch {
		case err == nil && owner.ID != userID:
			return invalid("wallet is already linked to another account")
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return fmt.Errorf("failed to check wallet owner: %w", err)
		}
		u.WalletAddress = &address
		u.WalletVerified = true
		if err := tx.UpdateUser(ctx, u); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return invalid("wallet is already linked to another account")
			}
			return fmt.Errorf("failed to link wallet: %w", err)
		}
		if err := tx.DeleteWalletNonce(ctx, address); err != nil {
			return fmt.Errorf("failed to consume wallet nonce: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("User %s verified wallet %s", userID, address)
	return user, nil
}
