package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkup/internal/docstore"
	"linkup/internal/repository"
	"linkup/internal/utils"
	"linkup/model"
	"linkup/pkg/logging"
)

func newUserFixture(t *testing.T) (*UserService, *repository.UserRepository) {
	t.Helper()
	store := docstore.NewMemStore()
	users := repository.NewUserRepository(store, logging.NewTestLogger())
	return NewUserService(users, logging.NewTestLogger()), users
}

func seedUser(t *testing.T, users *repository.UserRepository, id, email, name string) {
	t.Helper()
	u := model.User{ID: id, Email: email, Name: name}
	u.Keywords = utils.BuildKeywords(email, name, id)
	require.NoError(t, users.Save(context.Background(), u))
}

func TestUserSearchByPrefix(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()
	seedUser(t, users, "u1", "alex@example.com", "Alex Rivera")
	seedUser(t, users, "u2", "sam@example.com", "Sam Chen")

	found, err := svc.Search(ctx, "al")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "u1", found[0].ID)

	found, err = svc.Search(ctx, "RIV")
	require.NoError(t, err)
	require.Len(t, found, 1, "search is case-insensitive")
	assert.Equal(t, "u1", found[0].ID)

	found, err = svc.Search(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUserSearchEmptyTerm(t *testing.T) {
	svc, users := newUserFixture(t)
	seedUser(t, users, "u1", "alex@example.com", "Alex")

	found, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, found, "a blank query matches nobody rather than everybody")
}

func TestUserFollowRoundTrip(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()
	seedUser(t, users, "u1", "alex@example.com", "Alex")
	seedUser(t, users, "u2", "sam@example.com", "Sam")

	require.NoError(t, svc.Follow(ctx, "u1", "u2"))

	u1, err := users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, u1.Following)

	u2, err := users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, u2.Followers)

	// following twice does not duplicate the edge
	require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	u2, err = users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, u2.Followers, 1)

	require.NoError(t, svc.Unfollow(ctx, "u1", "u2"))
	u1, err = users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u1.Following)
	u2, err = users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, u2.Followers)
}

func TestUserSelfFollowIsNoop(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()
	seedUser(t, users, "u1", "alex@example.com", "Alex")

	require.NoError(t, svc.Follow(ctx, "u1", "u1"))
	u1, err := users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u1.Following)
	assert.Empty(t, u1.Followers)
}

func TestUserFollowersFollowingResolve(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()
	seedUser(t, users, "u1", "alex@example.com", "Alex")
	seedUser(t, users, "u2", "sam@example.com", "Sam")
	seedUser(t, users, "u3", "kim@example.com", "Kim")

	require.NoError(t, svc.Follow(ctx, "u2", "u1"))
	require.NoError(t, svc.Follow(ctx, "u3", "u1"))
	require.NoError(t, svc.Follow(ctx, "u1", "u2"))

	followers, err := svc.Followers(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, followers, 2)

	following, err := svc.Following(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "Sam", following[0].Name)
}

func TestUserProfileHidesCredentials(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()

	u := model.User{ID: "u1", Email: "alex@example.com", Name: "Alex", PasswordHash: "hash"}
	require.NoError(t, users.Save(ctx, u))

	got, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.Name)
	assert.Empty(t, got.PasswordHash, "profiles never carry the credential hash")
}
