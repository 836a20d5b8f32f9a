package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkup/internal/blobstore"
	"linkup/internal/docstore"
	"linkup/internal/notify"
	"linkup/internal/repository"
	"linkup/internal/session"
	"linkup/model"
	"linkup/pkg/apperr"
	"linkup/pkg/logging"
)

type feedFixture struct {
	store    *docstore.MemStore
	posts    *repository.PostRepository
	blob     *blobstore.MemUploader
	notifier *notify.LocalNotifier
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	store := docstore.NewMemStore()
	return &feedFixture{
		store:    store,
		posts:    repository.NewPostRepository(store),
		blob:     blobstore.NewMemUploader(),
		notifier: notify.NewLocalNotifier(logging.NewTestLogger()),
	}
}

func (fx *feedFixture) feedAs(id, name string, opts ...FeedOption) *FeedService {
	sess := session.ForIdentity(model.Identity{ID: id, Email: id + "@example.com", Name: name})
	return NewFeedService(fx.posts, fx.blob, fx.notifier, sess, logging.NewTestLogger(), opts...)
}

func TestFeedCreateShowsUpInSnapshot(t *testing.T) {
	fx := newFeedFixture(t)
	feed := fx.feedAs("u1", "Alex")
	ctx := context.Background()

	require.NoError(t, feed.Subscribe(ctx))
	defer feed.Cancel()
	assert.False(t, feed.Loading(), "initial snapshot flips loading off")

	require.NoError(t, feed.Create(ctx, "hello world", nil))

	posts := feed.Posts()
	require.Len(t, posts, 1)
	p := posts[0]
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "Alex", p.UserName)
	assert.Equal(t, "hello world", p.Content)
	assert.Empty(t, p.Likes)
	assert.Empty(t, p.Comments)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestFeedResubscribeReplacesSubscription(t *testing.T) {
	fx := newFeedFixture(t)
	feed := fx.feedAs("u1", "Alex")
	ctx := context.Background()

	require.NoError(t, feed.Subscribe(ctx))
	require.NoError(t, feed.Subscribe(ctx))
	feed.Cancel()

	// a subscription leaked by the first Subscribe would still mirror this
	_, err := fx.posts.Create(ctx, model.Post{UserID: "u1", UserName: "Alex", Content: "late"})
	require.NoError(t, err)
	assert.Empty(t, feed.Posts())
}

func TestFeedCreateRequiresAuth(t *testing.T) {
	fx := newFeedFixture(t)
	feed := NewFeedService(fx.posts, fx.blob, fx.notifier, session.New(), logging.NewTestLogger())

	err := feed.Create(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
}

func TestFeedCreateNeedsTextOrMedia(t *testing.T) {
	fx := newFeedFixture(t)
	feed := fx.feedAs("u1", "Alex")

	err := feed.Create(context.Background(), "   ", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestFeedCreateUploadsMedia(t *testing.T) {
	fx := newFeedFixture(t)
	feed := fx.feedAs("u1", "Alex")
	ctx := context.Background()

	require.NoError(t, feed.Subscribe(ctx))
	defer feed.Cancel()

	require.NoError(t, feed.Create(ctx, "with a photo", &Media{Source: "photo.png", Data: []byte("img")}))

	posts := feed.Posts()
	require.Len(t, posts, 1)
	require.True(t, strings.HasPrefix(posts[0].MediaURL, "/media/posts/u1/"))

	path := strings.TrimPrefix(posts[0].MediaURL, "/media/")
	blob, ok := fx.blob.Blob(path)
	require.True(t, ok)
	assert.Equal(t, []byte("img"), blob)
}

func TestFeedOptimisticCreate(t *testing.T) {
	fx := newFeedFixture(t)
	feed := fx.feedAs("u1", "Alex", WithOptimisticCreate())

	require.NoError(t, feed.Create(context.Background(), "instant", nil))

	posts := feed.Posts()
	require.Len(t, posts, 1, "optimistic create inserts without waiting for a snapshot")
	assert.Equal(t, "instant", posts[0].Content)
	assert.NotEmpty(t, posts[0].ID)
}

func TestFeedLikeToggle(t *testing.T) {
	fx := newFeedFixture(t)
	author := fx.feedAs("u1", "Alex")
	reader := fx.feedAs("u2", "Sam")
	ctx := context.Background()

	require.NoError(t, author.Create(ctx, "like me", nil))
	require.NoError(t, reader.Subscribe(ctx))
	defer reader.Cancel()

	postID := reader.Posts()[0].ID

	liked, err := reader.Like(ctx, postID, "u2")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []string{"u2"}, reader.Posts()[0].Likes)

	liked, err = reader.Like(ctx, postID, "u2")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, reader.Posts()[0].Likes)
}

func TestFeedLikeNotifiesAuthor(t *testing.T) {
	fx := newFeedFixture(t)
	author := fx.feedAs("u1", "Alex")
	reader := fx.feedAs("u2", "Sam")
	ctx := context.Background()

	require.NoError(t, author.Create(ctx, "like me", nil))
	posts, err := fx.posts.List(ctx)
	require.NoError(t, err)
	postID := posts[0].ID

	_, err = reader.Like(ctx, postID, "u2")
	require.NoError(t, err)

	items := fx.notifier.List()
	require.Len(t, items, 1)
	assert.Equal(t, "New like", items[0].Title)
	assert.Equal(t, "Sam liked your post", items[0].Body)
	assert.Equal(t, postID, items[0].Data["postId"])

	// unliking and liking your own post stay silent
	_, err = reader.Like(ctx, postID, "u2")
	require.NoError(t, err)
	_, err = author.Like(ctx, postID, "u1")
	require.NoError(t, err)
	assert.Len(t, fx.notifier.List(), 1)
}

func TestFeedComment(t *testing.T) {
	fx := newFeedFixture(t)
	author := fx.feedAs("u1", "Alex")
	reader := fx.feedAs("u2", "Sam")
	ctx := context.Background()

	require.NoError(t, author.Create(ctx, "discuss", nil))
	require.NoError(t, reader.Subscribe(ctx))
	defer reader.Cancel()

	postID := reader.Posts()[0].ID
	comment, err := reader.Comment(ctx, postID, "nice one", model.Identity{ID: "u2", Name: "Sam"})
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "u2", comment.UserID)

	comments := reader.Posts()[0].Comments
	require.Len(t, comments, 1)
	assert.Equal(t, "nice one", comments[0].Content)

	items := fx.notifier.List()
	require.Len(t, items, 1)
	assert.Equal(t, "New comment", items[0].Title)
}

func TestFeedCommentValidation(t *testing.T) {
	fx := newFeedFixture(t)
	feed := fx.feedAs("u1", "Alex")

	_, err := feed.Comment(context.Background(), "p1", "  ", model.Identity{ID: "u1"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestFeedUpdateOwnerOnly(t *testing.T) {
	fx := newFeedFixture(t)
	author := fx.feedAs("u1", "Alex")
	other := fx.feedAs("u2", "Sam")
	ctx := context.Background()

	require.NoError(t, author.Create(ctx, "original", nil))
	posts, err := fx.posts.List(ctx)
	require.NoError(t, err)
	postID := posts[0].ID

	err = other.Update(ctx, postID, "hijacked", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodePermissionDenied))

	require.NoError(t, author.Update(ctx, postID, "edited", nil))
	p, err := fx.posts.Get(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, "edited", p.Content)
}

func TestFeedDeleteOwnerOnly(t *testing.T) {
	fx := newFeedFixture(t)
	author := fx.feedAs("u1", "Alex")
	other := fx.feedAs("u2", "Sam")
	ctx := context.Background()

	require.NoError(t, author.Subscribe(ctx))
	defer author.Cancel()
	require.NoError(t, author.Create(ctx, "short lived", nil))
	postID := author.Posts()[0].ID

	err := other.Delete(ctx, postID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodePermissionDenied))

	require.NoError(t, author.Delete(ctx, postID))
	assert.Empty(t, author.Posts(), "the snapshot after delete drops the post")
}

// flakyStore fails queries on demand to exercise the sticky-error path.
type flakyStore struct {
	docstore.Store
	failQuery bool
}

func (s *flakyStore) Query(ctx context.Context, collection string, filter docstore.Filter, order docstore.Order) ([]docstore.Document, error) {
	if s.failQuery {
		return nil, apperr.Unavailable("backend down")
	}
	return s.Store.Query(ctx, collection, filter, order)
}

func TestFeedStickyErrorHoldsLastGoodSnapshot(t *testing.T) {
	mem := docstore.NewMemStore()
	flaky := &flakyStore{Store: mem}
	posts := repository.NewPostRepository(flaky)
	fxBlob := blobstore.NewMemUploader()
	notifier := notify.NewLocalNotifier(logging.NewTestLogger())
	sess := session.ForIdentity(model.Identity{ID: "u1", Name: "Alex"})
	feed := NewFeedService(posts, fxBlob, notifier, sess, logging.NewTestLogger())
	ctx := context.Background()

	require.NoError(t, feed.Subscribe(ctx))
	defer feed.Cancel()
	require.NoError(t, feed.Create(ctx, "first", nil))
	require.Len(t, feed.Posts(), 1)

	flaky.failQuery = true
	require.Error(t, feed.Refresh(ctx))
	require.Error(t, feed.Err())

	// snapshots delivered while the error is sticky are ignored
	require.NoError(t, feed.Create(ctx, "second", nil))
	assert.Len(t, feed.Posts(), 1, "list holds its last good contents")

	flaky.failQuery = false
	require.NoError(t, feed.Refresh(ctx))
	assert.NoError(t, feed.Err())
	assert.Len(t, feed.Posts(), 2, "a successful refresh clears the error and replaces the list")
}
