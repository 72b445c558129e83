// Package mongostore keeps each collection in a MongoDB collection of the same name.
// Update runs inside a multi-document transaction, so the server must be a replica set.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

const seqField = "_seq"

type Backend struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context, uri, database string) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	b := &Backend{client: client, db: client.Database(database)}
	if err := b.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return b, nil
}

// ensureIndexes makes user emails unique; Insert reports a clash as store.ErrDuplicate.
func (b *Backend) ensureIndexes(ctx context.Context) error {
	_, err := b.db.Collection(store.CollUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("users_email_unique").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo index users.email: %w", err)
	}
	return nil
}

func (b *Backend) View(ctx context.Context, fn func(store.Txn) error) error {
	return fn(&txn{db: b.db, readOnly: true})
}

func (b *Backend) Update(ctx context.Context, fn func(store.Txn) error) error {
	sess, err := b.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(&txn{db: b.db, sc: sc})
	})
	return err
}

func (b *Backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

type txn struct {
	db       *mongo.Database
	sc       mongo.SessionContext
	readOnly bool
}

var errReadOnly = errors.New("mongostore: write in read-only transaction")

// bind routes the call through the transaction session when there is one.
func (t *txn) bind(ctx context.Context) context.Context {
	if t.sc != nil {
		return mongo.NewSessionContext(ctx, t.sc)
	}
	return ctx
}

func (t *txn) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var d bson.D
	err := t.db.Collection(collection).FindOne(t.bind(ctx), bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return toJSON(d)
}

func (t *txn) Find(ctx context.Context, collection string, f store.Filter) ([]json.RawMessage, error) {
	filter := bson.M{}
	for k, v := range f {
		filter[k] = v
	}
	ctx = t.bind(ctx)
	cur, err := t.db.Collection(collection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: seqField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var out []json.RawMessage
	for cur.Next(ctx) {
		var d bson.D
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		doc, err := toJSON(d)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cur.Err()
}

func (t *txn) Insert(ctx context.Context, collection, id string, doc json.RawMessage) error {
	if t.readOnly {
		return errReadOnly
	}
	d, err := fromJSON(id, time.Now().UnixNano(), doc)
	if err != nil {
		return err
	}
	_, err = t.db.Collection(collection).InsertOne(t.bind(ctx), d)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (t *txn) Replace(ctx context.Context, collection, id string, doc json.RawMessage) error {
	if t.readOnly {
		return errReadOnly
	}
	ctx = t.bind(ctx)
	coll := t.db.Collection(collection)

	var prev struct {
		Seq int64 `bson:"_seq"`
	}
	err := coll.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{seqField: 1})).Decode(&prev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}

	d, err := fromJSON(id, prev.Seq, doc)
	if err != nil {
		return err
	}
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, d)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *txn) Delete(ctx context.Context, collection, id string) error {
	if t.readOnly {
		return errReadOnly
	}
	res, err := t.db.Collection(collection).DeleteOne(t.bind(ctx), bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func fromJSON(id string, seq int64, doc json.RawMessage) (bson.D, error) {
	var body bson.D
	if err := bson.UnmarshalExtJSON(doc, false, &body); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	d := make(bson.D, 0, len(body)+2)
	d = append(d, bson.E{Key: "_id", Value: id}, bson.E{Key: seqField, Value: seq})
	return append(d, body...), nil
}

func toJSON(d bson.D) (json.RawMessage, error) {
	body := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key == "_id" || e.Key == seqField {
			continue
		}
		body = append(body, e)
	}
	raw, err := bson.MarshalExtJSON(body, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}
