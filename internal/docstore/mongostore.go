package docstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linkup/pkg/apperr"
	"linkup/pkg/logging"
)

// MongoStore implements Store on a Mongo database. Live subscriptions are
// built on change streams: every change event re-runs the subscribed query
// and delivers the full ordered result set.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger logging.Logger
}

func NewMongoStore(client *mongo.Client, dbName string, logger logging.Logger) *MongoStore {
	return &MongoStore{client: client, db: client.Database(dbName), logger: logger}
}

func (s *MongoStore) Write(ctx context.Context, collection, id string, fields Document, merge bool) (string, error) {
	col := s.db.Collection(collection)
	doc := resolveTimestamps(fields)

	if id == "" {
		res, err := col.InsertOne(ctx, bson.M(doc))
		if err != nil {
			return "", apperr.Wrap(apperr.CodeInternal, "write failed", err)
		}
		return insertedID(res.InsertedID), nil
	}

	if merge {
		_, err := col.UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M(doc)}, options.UpdateOne().SetUpsert(true))
		if err != nil {
			return "", apperr.Wrap(apperr.CodeInternal, "write failed", err)
		}
		return id, nil
	}

	_, err := col.ReplaceOne(ctx, idFilter(id), bson.M(doc), options.Replace().SetUpsert(true))
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "write failed", err)
	}
	return id, nil
}

func (s *MongoStore) Read(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("document not found: " + collection + "/" + id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "read failed", err)
	}
	return normalizeDoc(raw), nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filter Filter, order Order) ([]Document, error) {
	opts := options.Find()
	if order.Field != "" {
		dir := 1
		if order.Desc {
			dir = -1
		}
		opts = opts.SetSort(bson.D{{Key: order.Field, Value: dir}})
	}

	cur, err := s.db.Collection(collection).Find(ctx, toBSONFilter(filter), opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "query failed", err)
	}
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "query failed", err)
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, normalizeDoc(raw))
	}
	return docs, nil
}

func (s *MongoStore) Subscribe(ctx context.Context, collection string, filter Filter, order Order, onSnapshot SnapshotFunc, onError ErrorFunc) (CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	// the stream must be open before the initial query runs: a write landing
	// between the two still produces a change event, so no document can slip
	// into the gap unobserved
	stream, err := s.db.Collection(collection).Watch(watchCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, apperr.Wrap(apperr.CodeUnavailable, "change stream unavailable", err)
	}

	initial, err := s.Query(ctx, collection, filter, order)
	if err != nil {
		cancel()
		_ = stream.Close(context.Background())
		return nil, err
	}

	onSnapshot(initial)

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(watchCtx) {
			docs, err := s.Query(watchCtx, collection, filter, order)
			if err != nil {
				if watchCtx.Err() == nil {
					onError(err)
				}
				return
			}
			onSnapshot(docs)
		}
		if err := stream.Err(); err != nil && watchCtx.Err() == nil {
			s.logger.WithError(err).Error("change stream closed")
			onError(apperr.Wrap(apperr.CodeUnavailable, "subscription lost", err))
		}
	}()

	return CancelFunc(cancel), nil
}

func (s *MongoStore) Apply(ctx context.Context, collection, id string, updates ...Update) error {
	set := bson.M{}
	addToSet := bson.M{}
	pull := bson.M{}
	push := bson.M{}
	for _, u := range updates {
		switch u.Op {
		case UpSet:
			set[u.Field] = resolveValue(u.Value)
		case UpAddToSet:
			addToSet[u.Field] = u.Value
		case UpPull:
			pull[u.Field] = u.Value
		case UpPush:
			push[u.Field] = u.Value
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(pull) > 0 {
		update["$pull"] = pull
	}
	if len(push) > 0 {
		update["$push"] = push
	}
	if len(update) == 0 {
		return nil
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "update failed", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("document not found: " + collection + "/" + id)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete failed", err)
	}
	return nil
}

func (s *MongoStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return apperr.Wrap(apperr.CodeUnavailable, "transactions unavailable", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	if err == nil {
		return nil
	}
	// standalone deployments reject transactions with IllegalOperation
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 20 {
		return apperr.Wrap(apperr.CodeUnavailable, "transactions unavailable", err)
	}
	return err
}

func idFilter(id string) bson.M {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

func insertedID(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return ""
	}
}

func toBSONFilter(filter Filter) bson.M {
	out := bson.M{}
	for _, c := range filter {
		switch c.Op {
		case OpEq, OpArrayContains:
			// array-contains is Mongo's native equality match on array fields
			out[c.Field] = c.Value
		case OpPrefix:
			prefix, _ := c.Value.(string)
			out[c.Field] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}
		}
	}
	return out
}

func resolveTimestamps(fields Document) Document {
	out := make(Document, len(fields))
	for k, v := range fields {
		out[k] = resolveValue(v)
	}
	return out
}

func resolveValue(v any) any {
	if _, ok := v.(serverTimestamp); ok {
		return time.Now().UTC()
	}
	return v
}

func normalizeDoc(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(Document, len(val))
		for k, inner := range val {
			out[k] = normalizeValue(inner)
		}
		return out
	case bson.D:
		out := make(Document, len(val))
		for _, e := range val {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeValue(inner)
		}
		return out
	case bson.DateTime:
		return val.Time()
	case bson.ObjectID:
		return val.Hex()
	default:
		return v
	}
}
