package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"peergrade/internal/model"
)

// LockRepo persists response locks keyed by mapping id. Expiry semantics
// live in the lock manager; this layer only stores and swaps records.
type LockRepo interface {
	Get(ctx context.Context, mapID string) (*model.ResponseLock, error)
	// Put replaces whatever record exists for the mapping.
	Put(ctx context.Context, lock *model.ResponseLock) error
	Delete(ctx context.Context, mapID string) error
}

type lockRepo struct {
	collection *mongo.Collection
}

// NewLockRepo creates a new lock repository
func NewLockRepo(db *mongo.Database) LockRepo {
	return &lockRepo{
		collection: db.Collection("response_locks"),
	}
}

func (r *lockRepo) Get(ctx context.Context, mapID string) (*model.ResponseLock, error) {
	var lock model.ResponseLock
	err := r.collection.FindOne(ctx, bson.M{"_id": mapID}).Decode(&lock)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (r *lockRepo) Put(ctx context.Context, lock *model.ResponseLock) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": lock.MapID}, lock, opts)
	return err
}

func (r *lockRepo) Delete(ctx context.Context, mapID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": mapID})
	return err
}
