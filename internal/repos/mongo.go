package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo keeps one collection per entity with the entity id as _id.
// Transactions need a replica set or sharded cluster.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func OpenMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{client: client, db: client.Database(dbName)}, nil
}

type bsonDoc bson.Raw

func (d bsonDoc) Decode(out any) error { return bson.Unmarshal(d, out) }

func (m *Mongo) Get(ctx context.Context, coll, id string) (Doc, error) {
	raw, err := m.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return bsonDoc(raw), nil
}

func (m *Mongo) Put(ctx context.Context, coll, id string, v any) error {
	_, err := m.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, v, options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) Delete(ctx context.Context, coll, id string) error {
	res, err := m.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) List(ctx context.Context, coll string) ([]Doc, error) {
	cur, err := m.db.Collection(coll).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Doc
	for cur.Next(ctx) {
		out = append(out, bsonDoc(append(bson.Raw(nil), cur.Current...)))
	}
	return out, cur.Err()
}

// RunInTx binds fn to a session transaction; the driver retries transient conflicts.
// Calls made while a session is already on ctx join it.
func (m *Mongo) RunInTx(ctx context.Context, fn func(ctx context.Context, b Backend) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx, m)
	}
	sess, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, m)
	})
	return err
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
