package repository

import (
	"context"

	"linkup/internal/docstore"
	"linkup/model"
)

type PostRepository struct {
	store docstore.Store
}

func NewPostRepository(store docstore.Store) *PostRepository {
	return &PostRepository{store: store}
}

// Create writes a new post with empty like and comment sets and
// store-assigned timestamps. The live subscription, not the return value, is
// what reflects the post into feed state.
func (r *PostRepository) Create(ctx context.Context, p model.Post) (string, error) {
	doc := docstore.Document{
		"user_id":     p.UserID,
		"user_name":   p.UserName,
		"user_avatar": p.UserAvatar,
		"content":     p.Content,
		"media_url":   p.MediaURL,
		"likes":       []any{},
		"comments":    []any{},
		"created_at":  docstore.ServerTimestamp,
		"updated_at":  docstore.ServerTimestamp,
	}
	return r.store.Write(ctx, ColPosts, "", doc, false)
}

func (r *PostRepository) Get(ctx context.Context, id string) (model.Post, error) {
	doc, err := r.store.Read(ctx, ColPosts, id)
	if err != nil {
		return model.Post{}, err
	}
	return docToPost(doc), nil
}

// List returns the feed, newest first.
func (r *PostRepository) List(ctx context.Context) ([]model.Post, error) {
	docs, err := r.store.Query(ctx, ColPosts, nil, docstore.Order{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	return docsToPosts(docs), nil
}

// Subscribe opens a live feed subscription, newest first. Every delivery is
// the full ordered post list.
func (r *PostRepository) Subscribe(ctx context.Context, onPosts func([]model.Post), onError docstore.ErrorFunc) (docstore.CancelFunc, error) {
	return r.store.Subscribe(ctx, ColPosts, nil, docstore.Order{Field: "created_at", Desc: true},
		func(docs []docstore.Document) { onPosts(docsToPosts(docs)) },
		onError,
	)
}

// AddLike adds userID to the like set atomically; a duplicate add is a no-op.
func (r *PostRepository) AddLike(ctx context.Context, postID, userID string) error {
	return r.store.Apply(ctx, ColPosts, postID,
		docstore.AddToSet("likes", userID),
		docstore.Set("updated_at", docstore.ServerTimestamp),
	)
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	return r.store.Apply(ctx, ColPosts, postID,
		docstore.Pull("likes", userID),
		docstore.Set("updated_at", docstore.ServerTimestamp),
	)
}

// AppendComment appends atomically; the comment sequence is append-only.
func (r *PostRepository) AppendComment(ctx context.Context, postID string, c model.Comment) error {
	doc := docstore.Document{
		"id":          c.ID,
		"user_id":     c.UserID,
		"user_name":   c.UserName,
		"user_avatar": c.UserAvatar,
		"content":     c.Content,
		"created_at":  c.CreatedAt,
	}
	return r.store.Apply(ctx, ColPosts, postID,
		docstore.Push("comments", doc),
		docstore.Set("updated_at", docstore.ServerTimestamp),
	)
}

// Update overwrites content and media address and bumps the update timestamp.
func (r *PostRepository) Update(ctx context.Context, postID, content, mediaURL string) error {
	updates := []docstore.Update{
		docstore.Set("content", content),
		docstore.Set("updated_at", docstore.ServerTimestamp),
	}
	if mediaURL != "" {
		updates = append(updates, docstore.Set("media_url", mediaURL))
	}
	return r.store.Apply(ctx, ColPosts, postID, updates...)
}

func (r *PostRepository) Delete(ctx context.Context, postID string) error {
	return r.store.Delete(ctx, ColPosts, postID)
}

func docsToPosts(docs []docstore.Document) []model.Post {
	posts := make([]model.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, docToPost(doc))
	}
	return posts
}

func docToPost(doc docstore.Document) model.Post {
	p := model.Post{
		ID:         str(doc["_id"]),
		UserID:     str(doc["user_id"]),
		UserName:   str(doc["user_name"]),
		UserAvatar: str(doc["user_avatar"]),
		Content:    str(doc["content"]),
		MediaURL:   str(doc["media_url"]),
		Likes:      strSlice(doc["likes"]),
		Comments:   make([]model.Comment, 0),
		CreatedAt:  docstore.AsTime(doc["created_at"]),
		UpdatedAt:  docstore.AsTime(doc["updated_at"]),
	}
	for _, raw := range anySlice(doc["comments"]) {
		cd, ok := asDoc(raw)
		if !ok {
			continue
		}
		p.Comments = append(p.Comments, model.Comment{
			ID:         str(cd["id"]),
			UserID:     str(cd["user_id"]),
			UserName:   str(cd["user_name"]),
			UserAvatar: str(cd["user_avatar"]),
			Content:    str(cd["content"]),
			CreatedAt:  docstore.AsTime(cd["created_at"]),
		})
	}
	return p
}
