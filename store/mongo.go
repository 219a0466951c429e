package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore wraps a MongoDB database and hands out Collection views.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// ConnectMongo connects to MongoDB and verifies the server is reachable.
// A failed ping is reported as ErrUnreachable so callers abort the run.
func ConnectMongo(ctx context.Context, uri, database string, logger *slog.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w: %w", ErrUnreachable, err)
	}

	logger.Debug("Connected to MongoDB", "database", database)
	return &MongoStore{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}, nil
}

// Collection returns a Collection view over the named MongoDB collection.
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{
		coll:   s.db.Collection(name),
		logger: s.logger,
	}
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	cursor, err := c.coll.Find(ctx, toBSON(filter))
	if err != nil {
		return nil, classify(fmt.Errorf("find in %s: %w", c.coll.Name(), err))
	}
	defer cursor.Close(ctx)

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify(fmt.Errorf("decode find results from %s: %w", c.coll.Name(), err))
	}
	for i := range docs {
		docs[i] = normalize(docs[i])
	}
	return docs, nil
}

// normalize rewrites BSON container types into plain Go values so documents
// from MongoDB compare equal to documents built in memory.
func normalize(doc Document) Document {
	for key, value := range doc {
		doc[key] = normalizeValue(value)
	}
	return doc
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case primitive.A:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, normalizeValue(item))
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

func (c *mongoCollection) Upsert(ctx context.Context, docs []Document, filterFields, updateFields []string) error {
	opts := options.Update().SetUpsert(true)

	for _, doc := range docs {
		filter := make(bson.M, len(filterFields))
		for _, f := range filterFields {
			filter[f] = doc[f]
		}

		set := bson.M{}
		for _, f := range updateFields {
			set[f] = doc[f]
		}
		update := bson.M{"$set": set}

		// Fields outside updateFields are still written on insert.
		setOnInsert := bson.M{}
		for field, value := range doc {
			if _, updated := set[field]; !updated {
				setOnInsert[field] = value
			}
		}
		if len(setOnInsert) > 0 {
			update["$setOnInsert"] = setOnInsert
		}

		if _, err := c.coll.UpdateOne(ctx, filter, update, opts); err != nil {
			return classify(fmt.Errorf("upsert into %s: %w", c.coll.Name(), err))
		}
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, filter Filter) (int64, error) {
	result, err := c.coll.DeleteMany(ctx, toBSON(filter))
	if err != nil {
		return 0, classify(fmt.Errorf("delete from %s: %w", c.coll.Name(), err))
	}
	return result.DeletedCount, nil
}

func (c *mongoCollection) EnsureIndex(ctx context.Context, fields []string, unique bool) error {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}

	model := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(unique),
	}
	if _, err := c.coll.Indexes().CreateOne(ctx, model); err != nil {
		return classify(fmt.Errorf("create index on %s: %w", c.coll.Name(), err))
	}
	return nil
}

// toBSON translates a Filter into a MongoDB query document.
func toBSON(filter Filter) bson.M {
	query := make(bson.M, len(filter))
	for key, value := range filter {
		switch v := value.(type) {
		case In:
			query[key] = bson.M{"$in": []string(v)}
		case []Filter:
			if key != OrKey {
				query[key] = value
				continue
			}
			alternatives := make(bson.A, 0, len(v))
			for _, alt := range v {
				alternatives = append(alternatives, toBSON(alt))
			}
			query[OrKey] = alternatives
		default:
			query[key] = value
		}
	}
	return query
}

// classify tags connectivity failures as ErrUnreachable so the reconciler
// can distinguish a dead store from a single failed write.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	return err
}
