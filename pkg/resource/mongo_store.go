package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voyageiq/pkg/config"
	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/model"
	"voyageiq/pkg/query"
)

const fieldID = "_id"

// MongoStore is the Store every resource uses in production. T is the
// resource struct; it is decoded directly from the collection.
type MongoStore[T any] struct {
	collection   *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoStore[T any](cfg *config.Config, collection string) *MongoStore[T] {
	db := cfg.Client.Database(cfg.MongoDatabaseName)
	return NewMongoStoreFor[T](db.Collection(collection), cfg.ReadTimeout, cfg.WriteTimeout)
}

func NewMongoStoreFor[T any](collection *mongo.Collection, readTimeout, writeTimeout time.Duration) *MongoStore[T] {
	return &MongoStore[T]{
		collection:   collection,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// withTimeout bounds ctx by timeout, keeping an earlier deadline if the
// caller already set one.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *MongoStore[T]) Insert(ctx context.Context, doc *T) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", s.collection.Name(), err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		if d, ok := any(doc).(model.Document); ok {
			d.SetID(oid.Hex())
		}
	}
	return nil
}

func (s *MongoStore[T]) Find(ctx context.Context, q query.Descriptor) ([]T, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	filter, err := filterDoc(q.Filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(sortDoc(q.Sort)).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
	if p := projectionDoc(q.Include, q.Exclude); len(p) > 0 {
		opts.SetProjection(p)
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.collection.Name(), err)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0, q.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.collection.Name(), err)
	}
	return items, nil
}

func (s *MongoStore[T]) Count(ctx context.Context, filter map[string]any) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	doc, err := filterDoc(filter)
	if err != nil {
		return 0, err
	}
	count, err := s.collection.CountDocuments(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.collection.Name(), err)
	}
	return count, nil
}

func (s *MongoStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc T
	opts := options.FindOne().SetProjection(bson.D{{Key: query.FieldVersion, Value: 0}})
	if err := s.collection.FindOne(ctx, bson.M{fieldID: oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find %s %s: %w", s.collection.Name(), id, err)
	}
	return &doc, nil
}

func (s *MongoStore[T]) UpdateByID(ctx context.Context, id string, changes map[string]any) (*T, error) {
	if len(changes) == 0 {
		return s.FindByID(ctx, id)
	}

	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": changes,
		"$inc": bson.M{query.FieldVersion: 1},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: query.FieldVersion, Value: 0}})

	var doc T
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{fieldID: oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update %s %s: %w", s.collection.Name(), id, err)
	}
	return &doc, nil
}

func (s *MongoStore[T]) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{fieldID: oid})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", s.collection.Name(), id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &apperrors.CastError{Path: fieldID, Value: id, Err: err}
	}
	return oid, nil
}

// filterDoc converts a descriptor filter into a query document. Ids are
// matched as ObjectIDs, both as plain values and inside operators.
func filterDoc(filter map[string]any) (bson.M, error) {
	doc := make(bson.M, len(filter))
	for field, value := range filter {
		if field != fieldID {
			doc[field] = value
			continue
		}
		converted, err := idValue(value)
		if err != nil {
			return nil, err
		}
		doc[field] = converted
	}
	return doc, nil
}

func idValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return objectID(v)
	case []any:
		ids := make([]any, 0, len(v))
		for _, item := range v {
			id, err := idValue(item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	case map[string]any:
		ops := make(bson.M, len(v))
		for op, operand := range v {
			id, err := idValue(operand)
			if err != nil {
				return nil, err
			}
			ops[op] = id
		}
		return ops, nil
	}
	return value, nil
}

// sortDoc appends _id as a final key so pages are stable when the leading
// keys tie.
func sortDoc(fields []query.SortField) bson.D {
	doc := make(bson.D, 0, len(fields)+1)
	hasID := false
	for _, f := range fields {
		dir := 1
		if f.Descending {
			dir = -1
		}
		doc = append(doc, bson.E{Key: f.Field, Value: dir})
		hasID = hasID || f.Field == fieldID
	}
	if !hasID {
		doc = append(doc, bson.E{Key: fieldID, Value: 1})
	}
	return doc
}

func projectionDoc(include, exclude []string) bson.D {
	if len(include) > 0 {
		doc := make(bson.D, 0, len(include))
		for _, f := range include {
			doc = append(doc, bson.E{Key: f, Value: 1})
		}
		return doc
	}
	doc := make(bson.D, 0, len(exclude))
	for _, f := range exclude {
		doc = append(doc, bson.E{Key: f, Value: 0})
	}
	return doc
}
