package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	"github.com/riskibarqy/fitcoach-api/internal/platform/logging"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveDatabase(t *testing.T) {
	cases := []struct {
		name     string
		explicit string
		uri      string
		want     string
	}{
		{name: "explicit wins", explicit: "coach", uri: "mongodb://localhost:27017/other", want: "coach"},
		{name: "from uri path", uri: "mongodb://localhost:27017/profiles?retryWrites=true", want: "profiles"},
		{name: "srv uri", uri: "mongodb+srv://u:p@cluster0.example.net/chatbot", want: "chatbot"},
		{name: "replica set hosts", uri: "mongodb://u:p%2Fq@a:27017,b:27017/coach?replicaSet=rs0", want: "coach"},
		{name: "no path", uri: "mongodb://localhost:27017", want: defaultDatabase},
		{name: "garbage", uri: "::not a uri::", want: defaultDatabase},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveDatabase(tc.explicit, tc.uri))
		})
	}
}

func TestOpen_EmptyURIFailsWithoutBlocking(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client := Open(Options{}, logging.FromZap(zap.New(core)))

	assert.Equal(t, StateFailed, client.State())
	select {
	case <-client.Ready():
	default:
		t.Fatalf("ready channel should be closed after a synchronous failure")
	}
	require.Equal(t, 1, logs.FilterMessage("MongoDB connection error").Len())

	repo := NewUserRepository(client, "")
	_, err := repo.List(context.Background())
	assert.True(t, errors.Is(err, usecase.ErrDependencyUnavailable), "got %v", err)

	_, err = repo.Create(context.Background(), user.Profile{
		Name: "Alice", Email: "a@x.com", Age: 30, Height: 170, Weight: 65, Goal: "lose weight",
	})
	assert.True(t, errors.Is(err, usecase.ErrDependencyUnavailable), "got %v", err)
	assert.NoError(t, client.Disconnect(context.Background()))
}

func TestOpen_MalformedURIFails(t *testing.T) {
	client := Open(Options{URI: "postgres://not-mongo"}, logging.NewNop())

	assert.Equal(t, StateFailed, client.State())
	_, err := client.Collection(DefaultCollection)
	assert.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
}

func TestOpen_UnreachableServerSettlesAsFailed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client := Open(Options{
		URI:            "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100&connectTimeoutMS=100",
		ConnectTimeout: 300 * time.Millisecond,
	}, logging.FromZap(zap.New(core)))
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	select {
	case <-client.Ready():
	case <-time.After(5 * time.Second):
		t.Fatalf("connection attempt did not settle")
	}

	assert.Equal(t, StateFailed, client.State())
	assert.Equal(t, 1, logs.FilterMessage("MongoDB connection error").Len())
}

func TestUserRepository_CreateRejectsInvalidProfileBeforeTouchingStore(t *testing.T) {
	repo := NewUserRepository(Open(Options{}, logging.NewNop()), "")

	_, err := repo.Create(context.Background(), user.Profile{Name: "Bob"})
	var verr *user.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, user.FieldEmail)
}

func TestDocumentRoundTrip(t *testing.T) {
	created := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	profile := user.Profile{
		Name: "Alice", Email: "a@x.com", Age: 30, Height: 170.5, Weight: 65, Goal: "lose weight",
		CreatedAt: created,
	}

	doc := profileToDocument(profile)
	doc.ID = bson.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded userDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	got := documentToProfile(decoded)
	assert.Equal(t, doc.ID.Hex(), got.ID)
	assert.Equal(t, profile.Name, got.Name)
	assert.Equal(t, profile.Height, got.Height)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestDocumentDecodesLegacyIntegerNumbers(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: bson.NewObjectID()},
		{Key: "name", Value: "Bob"},
		{Key: "email", Value: "b@x.com"},
		{Key: "age", Value: int32(41)},
		{Key: "height", Value: int32(180)},
		{Key: "weight", Value: 80.5},
		{Key: "goal", Value: "build muscle"},
		{Key: "__v", Value: int32(0)},
	})
	require.NoError(t, err)

	var doc userDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got := documentToProfile(doc)
	assert.Equal(t, 41.0, got.Age)
	assert.Equal(t, 180.0, got.Height)
	assert.True(t, got.CreatedAt.IsZero())
}
