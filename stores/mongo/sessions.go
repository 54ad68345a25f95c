package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/scs/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SessionsCollection is the default collection for session documents
const SessionsCollection = "sessions"

type sessionDocument struct {
	Token  string    `bson:"_id"`
	Data   []byte    `bson:"data"`
	Expiry time.Time `bson:"expiry"`
}

// SessionStore is an scs.Store (and scs.CtxStore) backed by MongoDB
type SessionStore struct {
	coll *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{coll: db.Collection(SessionsCollection)}
}

// EnsureIndexes creates the TTL index that lets MongoDB reap expired sessions
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiry", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expiry_ttl"),
	})
	if err != nil {
		return fmt.Errorf("failed to create sessions ttl index: %w", err)
	}
	return nil
}

// FindCtx returns the session data for token if it exists and has not expired
func (s *SessionStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	filter := bson.D{
		{Key: "_id", Value: token},
		{Key: "expiry", Value: bson.D{{Key: "$gt", Value: time.Now().UTC()}}},
	}
	var doc sessionDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return doc.Data, true, nil
}

// CommitCtx upserts the session data for token
func (s *SessionStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	doc := sessionDocument{Token: token, Data: b, Expiry: expiry.UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: token}}, doc, options.Replace().SetUpsert(true))
	return err
}

// DeleteCtx removes the session.  Deleting a missing token is not an error.
func (s *SessionStore) DeleteCtx(ctx context.Context, token string) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: token}})
	return err
}

func (s *SessionStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *SessionStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *SessionStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

var (
	_ scs.Store    = (*SessionStore)(nil)
	_ scs.CtxStore = (*SessionStore)(nil)
)
