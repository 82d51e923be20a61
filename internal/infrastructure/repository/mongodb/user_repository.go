package mongodb

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const DefaultCollection = "users"

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Age       float64       `bson:"age"`
	Height    float64       `bson:"height"`
	Weight    float64       `bson:"weight"`
	Goal      string        `bson:"goal"`
	CreatedAt time.Time     `bson:"createdAt"`
}

type UserRepository struct {
	client     *Client
	collection string
	now        func() time.Time
}

func NewUserRepository(client *Client, collection string) *UserRepository {
	if collection == "" {
		collection = DefaultCollection
	}

	return &UserRepository{
		client:     client,
		collection: collection,
		now:        time.Now,
	}
}

func (r *UserRepository) Create(ctx context.Context, profile user.Profile) (user.Profile, error) {
	if err := profile.Validate(); err != nil {
		return user.Profile{}, err
	}

	coll, err := r.client.Collection(r.collection)
	if err != nil {
		return user.Profile{}, err
	}

	doc := profileToDocument(profile)
	doc.ID = bson.NewObjectID()
	// BSON datetimes carry millisecond precision.
	doc.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return user.Profile{}, classify(crerr.Wrapf(err, "insert user into %s", r.collection))
	}

	return documentToProfile(doc), nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.Profile, error) {
	coll, err := r.client.Collection(r.collection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, classify(crerr.Wrapf(err, "find users in %s", r.collection))
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify(crerr.Wrap(err, "decode user documents"))
	}

	out := make([]user.Profile, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentToProfile(doc))
	}

	return out, nil
}

func classify(err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || crerr.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
	}
	return err
}

func profileToDocument(p user.Profile) userDocument {
	return userDocument{
		Name:      p.Name,
		Email:     p.Email,
		Age:       p.Age,
		Height:    p.Height,
		Weight:    p.Weight,
		Goal:      p.Goal,
		CreatedAt: p.CreatedAt,
	}
}

func documentToProfile(doc userDocument) user.Profile {
	return user.Profile{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Email:     doc.Email,
		Age:       doc.Age,
		Height:    doc.Height,
		Weight:    doc.Weight,
		Goal:      doc.Goal,
		CreatedAt: doc.CreatedAt.UTC(),
	}
}
