package usecase

import (
	"context"
	"testing"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/pkg/jwt"
	"fanvault/services/platform/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prefixVerifier accepts signatures of the form "signed:<message>".
type prefixVerifier struct{}

func (prefixVerifier) Verify(_, message, signature string) (bool, error) {
	return signature == "signed:"+message, nil
}

func (e *env) auth(verifier SignatureVerifier) AuthUseCase {
	return NewAuthUseCase(e.store, jwt.NewService("test-secret"), verifier, e.log, WithClock(e.clock.Now))
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	uc := e.auth(nil)
	ctx := context.Background()

	res, err := uc.Register(ctx, " New@Example.com ", "password123", "Newbie")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", res.User.Email)
	assert.Equal(t, entity.RoleSupporter, res.User.Role)
	assert.NotEqual(t, "password123", res.User.PasswordHash)
	assert.NotEmpty(t, res.Token)

	claims, err := jwt.NewService("test-secret").ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := uc.Login(ctx, "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = uc.Login(ctx, "new@example.com", "wrong-password")
	assert.True(t, apperror.Is(err, apperror.AuthenticationRequired))

	_, err = uc.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, apperror.Is(err, apperror.AuthenticationRequired))
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	uc := e.auth(nil)
	ctx := context.Background()

	_, err := uc.Register(ctx, "not-an-email", "password123", "")
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = uc.Register(ctx, "short@example.com", "short", "")
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = uc.Register(ctx, e.supporter.Email, "password123", "")
	assert.True(t, apperror.Is(err, apperror.ValidationError))
}

func TestGetProfile(t *testing.T) {
	e := newEnv(t)
	uc := e.auth(nil)
	ctx := context.Background()

	profile, err := uc.GetProfile(ctx, e.supporter.ID)
	require.NoError(t, err)
	assert.Equal(t, e.supporter.ID, profile.User.ID)
	assert.Nil(t, profile.Creator)

	profile, err = uc.GetProfile(ctx, e.creator.UserID)
	require.NoError(t, err)
	require.NotNil(t, profile.Creator)
	assert.Equal(t, e.creator.ID, profile.Creator.ID)

	_, err = uc.GetProfile(ctx, "")
	assert.True(t, apperror.Is(err, apperror.AuthenticationRequired))
}

func TestVerifyWallet(t *testing.T) {
	e := newEnv(t)
	uc := e.auth(prefixVerifier{})
	ctx := context.Background()

	nonce, message, err := uc.IssueWalletNonce(ctx, e.supporter.ID, "0xABCDEF")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef", nonce.Address)
	assert.Equal(t, WalletMessage(nonce.Nonce), message)

	_, err = uc.VerifyWallet(ctx, e.supporter.ID, "0xabcdef", "forged")
	assert.True(t, apperror.Is(err, apperror.AccessDenied))

	user, err := uc.VerifyWallet(ctx, e.supporter.ID, "0xABCDEF", "signed:"+message)
	require.NoError(t, err)
	assert.True(t, user.WalletVerified)
	require.NotNil(t, user.WalletAddress)
	assert.Equal(t, "0xabcdef", *user.WalletAddress)

	_, err = uc.VerifyWallet(ctx, e.supporter.ID, "0xabcdef", "signed:"+message)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestVerifyWallet_ExpiredNonce(t *testing.T) {
	e := newEnv(t)
	uc := e.auth(prefixVerifier{})
	ctx := context.Background()

	_, message, err := uc.IssueWalletNonce(ctx, e.supporter.ID, "0xabc")
	require.NoError(t, err)

	e.clock.Advance(11 * time.Minute)
	_, err = uc.VerifyWallet(ctx, e.supporter.ID, "0xabc", "signed:"+message)
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = e.store.GetWalletNonce(ctx, "0xabc")
	assert.Error(t, err)
}

func TestVerifyWallet_NotConfigured(t *testing.T) {
	e := newEnv(t)
	uc := e.auth(nil)

	_, err := uc.VerifyWallet(context.Background(), e.supporter.ID, "0xabc", "sig")
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))
}

func TestVerifyWallet_LinkedToAnotherAccount(t *testing.T) {
	e := newEnv(t)
	uc := e.auth(prefixVerifier{})
	ctx := context.Background()

	_, message, err := uc.IssueWalletNonce(ctx, e.supporter.ID, "0xabc")
	require.NoError(t, err)
	_, err = uc.VerifyWallet(ctx, e.supporter.ID, "0xabc", "signed:"+message)
	require.NoError(t, err)

	_, message, err = uc.IssueWalletNonce(ctx, e.creator.UserID, "0xabc")
	require.NoError(t, err)
	_, err = uc.VerifyWallet(ctx, e.creator.UserID, "0xabc", "signed:"+message)
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	creatorUser, err := e.store.GetUser(ctx, e.creator.UserID)
	require.NoError(t, err)
	assert.Nil(t, creatorUser.WalletAddress)
}
