package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := parseID(oid.Hex(), domain.ErrUserNotFound)
	require.NoError(t, err)
	require.Equal(t, oid, got)

	_, err = parseID("not-an-id", domain.ErrProjectNotFound)
	require.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestToObjectIDs_DropsMalformed(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	got := toObjectIDs([]string{a.Hex(), "bogus", b.Hex()})
	require.Equal(t, []primitive.ObjectID{a, b}, got)
	require.Equal(t, []string{a.Hex(), b.Hex()}, toHexes(got))
}

func TestProjectDoc_RoundTrip(t *testing.T) {
	author, fan, cid := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	p := &domain.Project{
		Title:    "Drone",
		Tags:     []string{"hardware"},
		AuthorID: author.Hex(),
		Progress: 40,
		Status:   domain.StatusActive,
		Likes:    []string{fan.Hex()},
		LikedAt:  map[string]time.Time{fan.Hex(): now},
		Comments: []domain.Comment{{ID: cid.Hex(), UserID: fan.Hex(), Text: "cool", CreatedAt: now}},
	}

	doc, err := newProjectDoc(p)
	require.NoError(t, err)
	require.Equal(t, author, doc.Author)
	require.Equal(t, []primitive.ObjectID{fan}, doc.Likes)
	require.Equal(t, cid, doc.Comments[0].ID)

	doc.ID = primitive.NewObjectID()
	back := doc.toDomain()
	require.Equal(t, doc.ID.Hex(), back.ID)
	require.Equal(t, p.AuthorID, back.AuthorID)
	require.Equal(t, p.Likes, back.Likes)
	require.Equal(t, p.Comments, back.Comments)
	require.Equal(t, []string{}, back.Bookmarks)
	require.Equal(t, []string{}, back.Images)
}

func TestProjectDoc_InvalidAuthor(t *testing.T) {
	_, err := newProjectDoc(&domain.Project{AuthorID: "nope"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestProjectFilter(t *testing.T) {
	author := primitive.NewObjectID()

	filter, err := projectFilter(ports.ProjectFilter{
		Search:   "c++ (robots)",
		Tags:     []string{"ai", "ml"},
		AuthorID: author.Hex(),
	})
	require.NoError(t, err)
	require.Equal(t, author, filter["author"])
	require.Equal(t, bson.M{"$in": []string{"ai", "ml"}}, filter["tags"])

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)
	re := or[0].(bson.M)["title"].(primitive.Regex)
	require.Equal(t, `c\+\+ \(robots\)`, re.Pattern)
	require.Equal(t, "i", re.Options)

	empty, err := projectFilter(ports.ProjectFilter{})
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = projectFilter(ports.ProjectFilter{AuthorID: "xyz"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestProfileSet(t *testing.T) {
	name, bio := "Ada", ""
	set := profileSet(domain.ProfileUpdate{Name: &name, Bio: &bio, Skills: []string{"go"}})
	require.Equal(t, bson.M{"name": "Ada", "bio": "", "skills": []string{"go"}}, set)
	require.Empty(t, profileSet(domain.ProfileUpdate{}))
}

func TestFollowerUpdates(t *testing.T) {
	follower := primitive.NewObjectID()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	add := addFollowerUpdate(follower, at)
	require.Equal(t, bson.M{"followers": follower}, add["$addToSet"])
	require.Equal(t, bson.M{"followedAt." + follower.Hex(): at}, add["$set"])

	rm := removeFollowerUpdate(follower)
	require.Equal(t, bson.M{"followers": follower}, rm["$pull"])
	require.Equal(t, bson.M{"followedAt." + follower.Hex(): ""}, rm["$unset"])
}

func TestDetachUserUpdate(t *testing.T) {
	user := primitive.NewObjectID()

	filter, update := detachUserUpdate(user)
	require.Len(t, filter["$or"], 4)
	pull := update["$pull"].(bson.M)
	require.Equal(t, user, pull["likes"])
	require.Equal(t, bson.M{"user": user}, pull["comments"])
}

func TestTxRunner_Disabled(t *testing.T) {
	tx := NewTxRunner(nil, true)
	require.False(t, tx.Atomic(), "a nil client can never be transactional")

	called := false
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		called = true
		return errors.New("boom")
	})
	require.True(t, called)
	require.EqualError(t, err, "boom")
}

func TestConnectWithRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ConnectWithRetry(ctx, Config{URI: "mongodb://127.0.0.1:1", Database: "x", Timeout: 50 * time.Millisecond}, 3, time.Hour, zerolog.Nop())
	require.Error(t, err)
}
