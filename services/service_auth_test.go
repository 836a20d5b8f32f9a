package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkup/internal/blobstore"
	"linkup/internal/docstore"
	"linkup/internal/repository"
	"linkup/internal/session"
	"linkup/model"
	"linkup/pkg/apperr"
	"linkup/pkg/logging"
)

const testSecret = "test-secret"

type authFixture struct {
	users *repository.UserRepository
	blob  *blobstore.MemUploader
	dir   string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := docstore.NewMemStore()
	return &authFixture{
		users: repository.NewUserRepository(store, logging.NewTestLogger()),
		blob:  blobstore.NewMemUploader(),
		dir:   t.TempDir(),
	}
}

// authService builds a fresh service sharing the fixture's store and cache
// dir, the shape of an app relaunch.
func (fx *authFixture) authService() (*AuthService, *session.Session) {
	sess := session.New()
	cache := session.NewCache(fx.dir, logging.NewTestLogger())
	return NewAuthService(fx.users, fx.blob, sess, cache, testSecret, logging.NewTestLogger()), sess
}

func TestAuthSignUp(t *testing.T) {
	fx := newAuthFixture(t)
	auth, sess := fx.authService()
	ctx := context.Background()

	ident, err := auth.SignUp(ctx, "Alex@Example.com", "secret1", "Alex Rivera")
	require.NoError(t, err)
	assert.NotEmpty(t, ident.ID)
	assert.Equal(t, "alex@example.com", ident.Email, "email is normalized")
	assert.Equal(t, "Alex Rivera", ident.Name)
	assert.True(t, sess.Authenticated())

	u, err := fx.users.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.Contains(t, u.Keywords, "alex")
	assert.Contains(t, u.Keywords, "rivera")
}

func TestAuthSignUpDefaultsNameFromEmail(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()

	ident, err := auth.SignUp(context.Background(), "sam@example.com", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, "sam", ident.Name)
}

func TestAuthSignUpValidation(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "not-an-email", "secret1", "X")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	_, err = auth.SignUp(ctx, "ok@example.com", "short", "X")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestAuthSignUpDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "alex@example.com", "secret1", "Alex")
	require.NoError(t, err)

	_, err = auth.SignUp(ctx, "alex@example.com", "secret2", "Other")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeAlreadyExists))
}

func TestAuthLogin(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()
	ctx := context.Background()

	signed, err := auth.SignUp(ctx, "alex@example.com", "secret1", "Alex")
	require.NoError(t, err)
	auth.Logout()

	ident, err := auth.Login(ctx, "alex@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, signed.ID, ident.ID)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "alex@example.com", "secret1", "Alex")
	require.NoError(t, err)

	// wrong password and unknown email look identical to the caller
	_, err = auth.Login(ctx, "alex@example.com", "wrong-pass")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	assert.Equal(t, "invalid email or password", err.Error())

	_, err = auth.Login(ctx, "nobody@example.com", "secret1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	assert.Equal(t, "invalid email or password", err.Error())
}

func TestAuthSessionRestoreAcrossRelaunch(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()

	ident, err := auth.SignUp(context.Background(), "alex@example.com", "secret1", "Alex")
	require.NoError(t, err)

	relaunched, sess := fx.authService()
	restored := relaunched.CurrentIdentity()
	require.NotNil(t, restored, "identity survives via the on-disk cache")
	assert.Equal(t, ident.ID, restored.ID)
	assert.True(t, sess.Authenticated())
}

func TestAuthLogoutClearsCache(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()

	_, err := auth.SignUp(context.Background(), "alex@example.com", "secret1", "Alex")
	require.NoError(t, err)
	auth.Logout()
	assert.Nil(t, auth.CurrentIdentity())

	relaunched, _ := fx.authService()
	assert.Nil(t, relaunched.CurrentIdentity())
}

func TestAuthIssueToken(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()

	ident := model.Identity{ID: "u1", Email: "alex@example.com"}
	signed, err := auth.IssueToken(ident)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "u1", claims["uid"])
	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, "alex@example.com", claims["email"])
}

func TestAuthUpdateProfile(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "alex@example.com", "secret1", "Alex")
	require.NoError(t, err)

	name := "Alexandra Rivera"
	bio := "hello there"
	next, err := auth.UpdateProfile(ctx, ProfileUpdate{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, name, next.Name)
	assert.Equal(t, bio, next.Bio)

	u, err := fx.users.Get(ctx, next.ID)
	require.NoError(t, err)
	assert.Equal(t, name, u.Name)
	assert.Contains(t, u.Keywords, "alexandra", "keywords follow the new name")
}

func TestAuthUpdateProfileAvatar(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()
	ctx := context.Background()

	ident, err := auth.SignUp(ctx, "alex@example.com", "secret1", "Alex")
	require.NoError(t, err)

	next, err := auth.UpdateProfileFor(ctx, ident, ProfileUpdate{
		Avatar: &Media{Source: "me.png", Data: []byte("pic")},
	})
	require.NoError(t, err)
	require.NotEmpty(t, next.Avatar)

	u, err := fx.users.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, next.Avatar, u.Avatar)
}

func TestAuthUpdateProfileEmptyIsNoop(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()
	ctx := context.Background()

	ident, err := auth.SignUp(ctx, "alex@example.com", "secret1", "Alex")
	require.NoError(t, err)

	next, err := auth.UpdateProfileFor(ctx, ident, ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, ident, next)
}

func TestAuthPasswordResetValidation(t *testing.T) {
	fx := newAuthFixture(t)
	auth, _ := fx.authService()

	err := auth.RequestPasswordReset(context.Background(), "not-an-email")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	assert.NoError(t, auth.RequestPasswordReset(context.Background(), "alex@example.com"))
}
