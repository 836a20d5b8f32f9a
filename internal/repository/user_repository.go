package repository

import (
	"context"

	"linkup/internal/docstore"
	"linkup/model"
	"linkup/pkg/apperr"
	"linkup/pkg/logging"
)

type UserRepository struct {
	store  docstore.Store
	logger logging.Logger
}

func NewUserRepository(store docstore.Store, logger logging.Logger) *UserRepository {
	return &UserRepository{store: store, logger: logger}
}

// Save writes the full profile under the user's own id, resetting the follow
// sets. Called once at signup.
func (r *UserRepository) Save(ctx context.Context, u model.User) error {
	doc := docstore.Document{
		"email":         u.Email,
		"name":          u.Name,
		"bio":           u.Bio,
		"avatar":        u.Avatar,
		"followers":     []any{},
		"following":     []any{},
		"keywords":      toAny(u.Keywords),
		"password_hash": u.PasswordHash,
		"created_at":    docstore.ServerTimestamp,
		"updated_at":    docstore.ServerTimestamp,
	}
	_, err := r.store.Write(ctx, ColUsers, u.ID, doc, true)
	return err
}

// Update applies a partial profile update.
func (r *UserRepository) Update(ctx context.Context, id string, fields docstore.Document) error {
	updates := make([]docstore.Update, 0, len(fields)+1)
	for k, v := range fields {
		updates = append(updates, docstore.Set(k, v))
	}
	updates = append(updates, docstore.Set("updated_at", docstore.ServerTimestamp))
	return r.store.Apply(ctx, ColUsers, id, updates...)
}

func (r *UserRepository) Get(ctx context.Context, id string) (model.User, error) {
	doc, err := r.store.Read(ctx, ColUsers, id)
	if err != nil {
		return model.User{}, err
	}
	return docToUser(doc), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	docs, err := r.store.Query(ctx, ColUsers, docstore.Filter{docstore.Eq("email", email)}, docstore.Order{})
	if err != nil {
		return model.User{}, err
	}
	if len(docs) == 0 {
		return model.User{}, apperr.NotFound("no user with email " + email)
	}
	return docToUser(docs[0]), nil
}

// Search matches the precomputed keyword set by prefix.
func (r *UserRepository) Search(ctx context.Context, term string) ([]model.User, error) {
	docs, err := r.store.Query(ctx, ColUsers,
		docstore.Filter{docstore.Prefix("keywords", term)},
		docstore.Order{Field: "name"},
	)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, docToUser(doc))
	}
	return users, nil
}

// Follow adds the edge on both sides. The two writes run inside a store
// transaction when the deployment supports one; otherwise they run
// sequentially and a failure of the second write leaves the graph asymmetric
// until the next successful follow/unfollow.
func (r *UserRepository) Follow(ctx context.Context, userID, targetID string) error {
	return r.updateEdge(ctx,
		func(ctx context.Context) error {
			return r.store.Apply(ctx, ColUsers, userID, docstore.AddToSet("following", targetID))
		},
		func(ctx context.Context) error {
			return r.store.Apply(ctx, ColUsers, targetID, docstore.AddToSet("followers", userID))
		},
	)
}

func (r *UserRepository) Unfollow(ctx context.Context, userID, targetID string) error {
	return r.updateEdge(ctx,
		func(ctx context.Context) error {
			return r.store.Apply(ctx, ColUsers, userID, docstore.Pull("following", targetID))
		},
		func(ctx context.Context) error {
			return r.store.Apply(ctx, ColUsers, targetID, docstore.Pull("followers", userID))
		},
	)
}

func (r *UserRepository) updateEdge(ctx context.Context, first, second func(ctx context.Context) error) error {
	err := r.store.RunTransaction(ctx, func(ctx context.Context) error {
		if err := first(ctx); err != nil {
			return err
		}
		return second(ctx)
	})
	if err == nil || !apperr.Is(err, apperr.CodeUnavailable) {
		return err
	}

	r.logger.Warn("store transactions unavailable, updating follow edge sequentially")
	if err := first(ctx); err != nil {
		return err
	}
	if err := second(ctx); err != nil {
		// the edge stays asymmetric until the next successful update
		r.logger.WithError(err).Error("follow edge partially applied")
	}
	return nil
}

// RecordPasswordReset stores the reset request for the mail pipeline to pick
// up.
func (r *UserRepository) RecordPasswordReset(ctx context.Context, email string) error {
	doc := docstore.Document{
		"email":        email,
		"requested_at": docstore.ServerTimestamp,
	}
	_, err := r.store.Write(ctx, ColResets, "", doc, false)
	return err
}

func docToUser(doc docstore.Document) model.User {
	return model.User{
		ID:           str(doc["_id"]),
		Email:        str(doc["email"]),
		Name:         str(doc["name"]),
		Bio:          str(doc["bio"]),
		Avatar:       str(doc["avatar"]),
		Followers:    strSlice(doc["followers"]),
		Following:    strSlice(doc["following"]),
		Keywords:     strSlice(doc["keywords"]),
		PasswordHash: str(doc["password_hash"]),
		CreatedAt:    docstore.AsTime(doc["created_at"]),
		UpdatedAt:    docstore.AsTime(doc["updated_at"]),
	}
}
