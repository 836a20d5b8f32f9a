package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"linkup/internal/blobstore"
	"linkup/internal/docstore"
	"linkup/internal/notify"
	"linkup/internal/repository"
	"linkup/internal/session"
	"linkup/internal/utils"
	"linkup/model"
	"linkup/pkg/apperr"
	"linkup/pkg/logging"
)

// Media is binary content referenced by its original source string, which is
// what the image/video sniffing runs on.
type Media struct {
	Source string
	Data   []byte
}

type FeedOption func(*FeedService)

// WithOptimisticCreate makes Create insert the new post into local state
// immediately instead of waiting for the subscription echo. Default is
// fire-and-confirm: the write is acknowledged and the next snapshot reflects
// the post.
func WithOptimisticCreate() FeedOption {
	return func(f *FeedService) { f.optimisticCreate = true }
}

// FeedService keeps an in-memory, time-descending mirror of the posts
// collection and provides mutation operations that feel immediate despite
// network latency. The list is replaced wholesale on every snapshot; no other
// component mutates it.
type FeedService struct {
	posts    *repository.PostRepository
	blob     blobstore.Uploader
	notifier notify.Notifier
	session  *session.Session
	logger   logging.Logger

	optimisticCreate bool

	mu      sync.RWMutex
	list    []model.Post
	loading bool
	lastErr error
	cancel  docstore.CancelFunc
}

func NewFeedService(posts *repository.PostRepository, blob blobstore.Uploader, notifier notify.Notifier, sess *session.Session, logger logging.Logger, opts ...FeedOption) *FeedService {
	f := &FeedService{
		posts:    posts,
		blob:     blob,
		notifier: notifier,
		session:  sess,
		logger:   logger,
		loading:  true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe opens the live feed subscription, newest first, tearing down any
// previous subscription first. The initial snapshot is delivered before
// Subscribe returns.
func (f *FeedService) Subscribe(ctx context.Context) error {
	f.mu.Lock()
	old := f.cancel
	f.cancel = nil
	f.mu.Unlock()
	if old != nil {
		old()
	}

	cancel, err := f.posts.Subscribe(ctx, f.applySnapshot, f.subscriptionError)
	if err != nil {
		f.subscriptionError(err)
		return err
	}
	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()
	return nil
}

// Cancel tears down the subscription. Idempotent.
func (f *FeedService) Cancel() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Posts returns the current feed mirror, newest first.
func (f *FeedService) Posts() []model.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]model.Post, len(f.list))
	copy(out, f.list)
	return out
}

func (f *FeedService) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

// Err returns the sticky subscription error, if any. While set, snapshots are
// not applied and the list holds its last delivered contents.
func (f *FeedService) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastErr
}

// Refresh replaces the list with a one-time fetch. A successful refresh
// clears a sticky error.
func (f *FeedService) Refresh(ctx context.Context) error {
	posts, err := f.posts.List(ctx)
	if err != nil {
		f.logger.WithError(err).Error("feed refresh failed")
		f.mu.Lock()
		f.lastErr = err
		f.loading = false
		f.mu.Unlock()
		return err
	}
	f.mu.Lock()
	f.list = posts
	f.lastErr = nil
	f.loading = false
	f.mu.Unlock()
	return nil
}

// Create uploads media when present, then writes the new post. It does not
// touch local state unless optimistic create is enabled.
func (f *FeedService) Create(ctx context.Context, content string, media *Media) error {
	ident := f.session.Current()
	if ident == nil {
		return apperr.Unauthenticated("you must be signed in to post")
	}
	if strings.TrimSpace(content) == "" && media == nil {
		return apperr.InvalidArg("a post needs text or media")
	}

	mediaURL := ""
	if media != nil {
		ext := utils.MediaExt(media.Source)
		path := blobstore.PostMediaPath(ident.ID, ext, time.Now())
		url, err := f.blob.Upload(ctx, path, media.Data, utils.MediaContentType(ext))
		if err != nil {
			f.logger.WithError(err).Error("post media upload failed")
			return err
		}
		mediaURL = url
	}

	name := ident.Name
	if name == "" {
		name = "User"
	}
	post := model.Post{
		UserID:     ident.ID,
		UserName:   name,
		UserAvatar: ident.Avatar,
		Content:    content,
		MediaURL:   mediaURL,
	}

	id, err := f.posts.Create(ctx, post)
	if err != nil {
		f.logger.WithError(err).Error("post create failed")
		return err
	}

	if f.optimisticCreate {
		now := time.Now()
		post.ID = id
		post.Likes = []string{}
		post.Comments = []model.Comment{}
		post.CreatedAt = now
		post.UpdatedAt = now
		f.mu.Lock()
		if f.lastErr == nil {
			f.list = append([]model.Post{post}, f.list...)
		}
		f.mu.Unlock()
	}
	return nil
}

// Like toggles userID's membership in the post's like set and reports the new
// membership. The write uses the store's atomic set primitives, so the toggle
// is idempotent and the set can never hold duplicates even when two clients
// race.
func (f *FeedService) Like(ctx context.Context, postID, userID string) (bool, error) {
	p, err := f.posts.Get(ctx, postID)
	if err != nil {
		return false, err
	}

	liked := p.LikedBy(userID)
	if liked {
		err = f.posts.RemoveLike(ctx, postID, userID)
	} else {
		err = f.posts.AddLike(ctx, postID, userID)
	}
	if err != nil {
		f.logger.WithError(err).Error("like toggle failed")
		return liked, err
	}

	f.mutateLocal(postID, func(local *model.Post) {
		toggleLike(local, userID, !liked)
	})

	if !liked && p.UserID != userID {
		f.notifier.Schedule("New like", f.actorName(userID)+" liked your post",
			map[string]string{"postId": postID, "type": "like"})
	}
	return !liked, nil
}

// Comment appends a comment with a generated, time-ordered id and notifies
// the post author when someone else comments.
func (f *FeedService) Comment(ctx context.Context, postID, content string, author model.Identity) (model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return model.Comment{}, apperr.InvalidArg("comment text is required")
	}

	p, err := f.posts.Get(ctx, postID)
	if err != nil {
		return model.Comment{}, err
	}

	name := author.Name
	if name == "" {
		name = "User"
	}
	comment := model.Comment{
		ID:         ulid.Make().String(),
		UserID:     author.ID,
		UserName:   name,
		UserAvatar: author.Avatar,
		Content:    content,
		CreatedAt:  time.Now(),
	}

	if err := f.posts.AppendComment(ctx, postID, comment); err != nil {
		f.logger.WithError(err).Error("comment append failed")
		return model.Comment{}, err
	}

	f.mutateLocal(postID, func(local *model.Post) {
		local.Comments = append(append([]model.Comment{}, local.Comments...), comment)
	})

	if p.UserID != author.ID {
		f.notifier.Schedule("New comment", name+" commented on your post",
			map[string]string{"postId": postID, "type": "comment"})
	}
	return comment, nil
}

// Update overwrites content and media. Owner only.
func (f *FeedService) Update(ctx context.Context, postID, content string, media *Media) error {
	ident := f.session.Current()
	if ident == nil {
		return apperr.Unauthenticated("you must be signed in to edit a post")
	}
	if strings.TrimSpace(content) == "" && media == nil {
		return apperr.InvalidArg("a post needs text or media")
	}

	p, err := f.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != ident.ID {
		return apperr.Forbidden("only the author can edit a post")
	}

	mediaURL := ""
	if media != nil {
		ext := utils.MediaExt(media.Source)
		path := blobstore.PostMediaPath(ident.ID, ext, time.Now())
		url, err := f.blob.Upload(ctx, path, media.Data, utils.MediaContentType(ext))
		if err != nil {
			f.logger.WithError(err).Error("post media upload failed")
			return err
		}
		mediaURL = url
	}

	return f.posts.Update(ctx, postID, content, mediaURL)
}

// Delete removes the post outright. Owner only; no soft delete. The next
// snapshot drops it from the list.
func (f *FeedService) Delete(ctx context.Context, postID string) error {
	ident := f.session.Current()
	if ident == nil {
		return apperr.Unauthenticated("you must be signed in to delete a post")
	}

	p, err := f.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != ident.ID {
		return apperr.Forbidden("only the author can delete a post")
	}

	return f.posts.Delete(ctx, postID)
}

func (f *FeedService) applySnapshot(posts []model.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// sticky error: show nothing newer than the last good snapshot
	if f.lastErr != nil {
		return
	}
	f.list = posts
	f.loading = false
}

func (f *FeedService) subscriptionError(err error) {
	f.logger.WithError(err).Error("feed subscription failed")
	f.mu.Lock()
	f.lastErr = err
	f.loading = false
	f.mu.Unlock()
}

func (f *FeedService) mutateLocal(postID string, mutate func(*model.Post)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.list {
		if f.list[i].ID == postID {
			mutate(&f.list[i])
			return
		}
	}
}

func (f *FeedService) actorName(userID string) string {
	if ident := f.session.Current(); ident != nil && ident.ID == userID && ident.Name != "" {
		return ident.Name
	}
	return "Someone"
}

func toggleLike(p *model.Post, userID string, add bool) {
	if add {
		if !p.LikedBy(userID) {
			p.Likes = append(append([]string{}, p.Likes...), userID)
		}
		return
	}
	kept := make([]string, 0, len(p.Likes))
	for _, id := range p.Likes {
		if id != userID {
			kept = append(kept, id)
		}
	}
	p.Likes = kept
}
