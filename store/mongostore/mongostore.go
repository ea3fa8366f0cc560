// Package mongostore is the MongoDB Record Store. Each collection maps to a
// Mongo collection of the same name; record ids live in _id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lovenest/models"
	"lovenest/store"
)

// Open connects to uri, pings the server and returns the store for database.
func Open(ctx context.Context, uri, database string) (*store.Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return store.New(
		NewCollection[models.Plan](db.Collection(store.Plans)),
		NewCollection[models.BucketListItem](db.Collection(store.BucketList)),
		NewCollection[models.Dream](db.Collection(store.Dreams)),
		NewCollection[models.Milestone](db.Collection(store.Milestones)),
		NewCollection[models.Movie](db.Collection(store.Cinema)),
		client.Disconnect,
	), nil
}

type Collection[T any] struct {
	coll *mongo.Collection
}

func NewCollection[T any](coll *mongo.Collection) *Collection[T] {
	return &Collection[T]{coll: coll}
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	cursor, err := c.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, store.ErrNotFound
	}
	return doc, err
}

// Insert stores doc as is; its _id field must already hold id.
func (c *Collection[T]) Insert(ctx context.Context, id string, doc T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s/%s: %w", c.coll.Name(), id, err)
	}
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, set store.Fields) error {
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, updateDoc(set))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c.coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// updateDoc splits set into $set and $unset. An update with neither still
// needs an operator, so an empty $set is sent.
func updateDoc(set store.Fields) bson.M {
	sets, unsets := bson.M{}, bson.M{}
	for k, v := range set {
		if v == nil {
			unsets[k] = ""
		} else {
			sets[k] = v
		}
	}
	update := bson.M{}
	if len(sets) > 0 || len(unsets) == 0 {
		update["$set"] = sets
	}
	if len(unsets) > 0 {
		update["$unset"] = unsets
	}
	return update
}
