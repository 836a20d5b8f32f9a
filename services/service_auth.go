package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"linkup/internal/blobstore"
	"linkup/internal/docstore"
	"linkup/internal/repository"
	"linkup/internal/session"
	"linkup/internal/utils"
	"linkup/model"
	"linkup/pkg/apperr"
	"linkup/pkg/logging"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 6

const tokenTTL = 7 * 24 * time.Hour

// AuthService is the identity collaborator surface: signup, login, session
// restore, profile updates. Credentials live in the user document as a bcrypt
// hash; sessions are carried as HS256 JWTs.
type AuthService struct {
	users   *repository.UserRepository
	blob    blobstore.Uploader
	session *session.Session
	cache   *session.Cache
	secret  []byte
	logger  logging.Logger
}

func NewAuthService(users *repository.UserRepository, blob blobstore.Uploader, sess *session.Session, cache *session.Cache, secret string, logger logging.Logger) *AuthService {
	return &AuthService{
		users:   users,
		blob:    blob,
		session: sess,
		cache:   cache,
		secret:  []byte(secret),
		logger:  logger,
	}
}

func (a *AuthService) SignUp(ctx context.Context, email, password, name string) (model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(email) {
		return model.Identity{}, apperr.InvalidArg("a valid email is required")
	}
	if len(password) < minPasswordLen {
		return model.Identity{}, apperr.InvalidArg("password must be at least 6 characters")
	}

	if _, err := a.users.GetByEmail(ctx, email); err == nil {
		return model.Identity{}, apperr.AlreadyExists("an account with this email already exists")
	} else if !apperr.Is(err, apperr.CodeNotFound) {
		return model.Identity{}, err
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Identity{}, apperr.Wrap(apperr.CodeInternal, "password hashing failed", err)
	}

	u := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	u.Keywords = utils.BuildKeywords(u.Email, u.Name, u.ID)

	if err := a.users.Save(ctx, u); err != nil {
		a.logger.WithError(err).Error("profile save failed")
		return model.Identity{}, err
	}

	ident := u.Identity()
	a.session.Set(ident)
	a.cache.Save(ident)
	a.logger.WithFields(logging.Fields{"user_id": u.ID}).Info("user signed up")
	return ident, nil
}

func (a *AuthService) Login(ctx context.Context, email, password string) (model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.Identity{}, apperr.InvalidArg("email and password are required")
	}

	u, err := a.users.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.CodeNotFound) {
		return model.Identity{}, apperr.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return model.Identity{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.Identity{}, apperr.Unauthenticated("invalid email or password")
	}

	ident := u.Identity()
	a.session.Set(ident)
	a.cache.Save(ident)
	return ident, nil
}

func (a *AuthService) Logout() {
	a.session.Clear()
	a.cache.Clear()
}

// CurrentIdentity returns the live session identity, falling back to the
// cached one from the previous launch.
func (a *AuthService) CurrentIdentity() *model.Identity {
	if ident := a.session.Current(); ident != nil {
		return ident
	}
	if ident := a.cache.Load(); ident != nil {
		a.session.Set(*ident)
		return ident
	}
	return nil
}

func (a *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(email) {
		return apperr.InvalidArg("a valid email is required")
	}
	if err := a.users.RecordPasswordReset(ctx, email); err != nil {
		return err
	}
	a.logger.WithFields(logging.Fields{"email": email}).Info("password reset requested")
	return nil
}

// ProfileUpdate is a partial display-field update. Nil fields are untouched.
type ProfileUpdate struct {
	Name   *string
	Bio    *string
	Avatar *Media
}

// UpdateProfile updates the signed-in user and refreshes the session and its
// on-disk cache.
func (a *AuthService) UpdateProfile(ctx context.Context, upd ProfileUpdate) (model.Identity, error) {
	ident := a.CurrentIdentity()
	if ident == nil {
		return model.Identity{}, apperr.Unauthenticated("no user is currently signed in")
	}
	next, err := a.UpdateProfileFor(ctx, *ident, upd)
	if err != nil {
		return model.Identity{}, err
	}
	a.session.Set(next)
	a.cache.Save(next)
	return next, nil
}

// UpdateProfileFor applies the update for an explicit identity without
// touching session state. The HTTP layer resolves the identity per request.
func (a *AuthService) UpdateProfileFor(ctx context.Context, ident model.Identity, upd ProfileUpdate) (model.Identity, error) {
	fields := docstore.Document{}
	next := ident

	if upd.Name != nil {
		fields["name"] = *upd.Name
		next.Name = *upd.Name
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
		next.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		ext := utils.MediaExt(upd.Avatar.Source)
		path := blobstore.AvatarPath(ident.ID, ext, time.Now())
		addr, err := a.blob.Upload(ctx, path, upd.Avatar.Data, utils.MediaContentType(ext))
		if err != nil {
			a.logger.WithError(err).Error("avatar upload failed")
			return model.Identity{}, err
		}
		fields["avatar"] = addr
		next.Avatar = addr
	}
	if len(fields) == 0 {
		return ident, nil
	}

	if upd.Name != nil {
		fields["keywords"] = utils.BuildKeywords(next.Email, next.Name, next.ID)
	}

	if err := a.users.Update(ctx, ident.ID, fields); err != nil {
		return model.Identity{}, err
	}
	return next, nil
}

// IssueToken signs a session token for the identity.
func (a *AuthService) IssueToken(ident model.Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   ident.ID,
		"uid":   ident.ID,
		"email": ident.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "token signing failed", err)
	}
	return signed, nil
}
