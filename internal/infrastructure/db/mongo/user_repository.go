package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectlink/projectlink-api/internal/core/domain"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository. Follow edges are stored as
// ObjectID arrays and every mutation is a single-document update.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Name         string               `bson:"name"`
	Email        string               `bson:"email"`
	PasswordHash string               `bson:"password"`
	Institution  string               `bson:"institution"`
	Avatar       string               `bson:"avatar"`
	Bio          string               `bson:"bio"`
	Skills       []string             `bson:"skills"`
	Followers    []primitive.ObjectID `bson:"followers"`
	Following    []primitive.ObjectID `bson:"following"`
	FollowedAt   map[string]time.Time `bson:"followedAt,omitempty"`
	IsAdmin      bool                 `bson:"isAdmin"`
	Banned       bool                 `bson:"banned"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func newUserDoc(u *domain.User) userDoc {
	return userDoc{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Institution:  u.Institution,
		Avatar:       u.Avatar,
		Bio:          u.Bio,
		Skills:       nonNilStrings(u.Skills),
		Followers:    toObjectIDs(u.Followers),
		Following:    toObjectIDs(u.Following),
		FollowedAt:   u.FollowedAt,
		IsAdmin:      u.IsAdmin,
		Banned:       u.Banned,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Institution:  d.Institution,
		Avatar:       d.Avatar,
		Bio:          d.Bio,
		Skills:       nonNilStrings(d.Skills),
		Followers:    toHexes(d.Followers),
		Following:    toHexes(d.Following),
		FollowedAt:   d.FollowedAt,
		IsAdmin:      d.IsAdmin,
		Banned:       d.Banned,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newUserDoc(user)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	oids := toObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// List returns every user, newest first.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	return r.findAndSet(ctx, id, profileSet(update))
}

func (r *UserRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) (*domain.User, error) {
	return r.findAndSet(ctx, id, bson.M{"isAdmin": isAdmin})
}

func (r *UserRepository) SetBanned(ctx context.Context, id string, banned bool) (*domain.User, error) {
	return r.findAndSet(ctx, id, bson.M{"banned": banned})
}

func (r *UserRepository) findAndSet(ctx context.Context, id string, set bson.M) (*domain.User, error) {
	oid, err := parseID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	var doc userDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) AddFollowing(ctx context.Context, userID, targetID string) error {
	return r.updateEdge(ctx, userID, targetID, func(target primitive.ObjectID) bson.M {
		return bson.M{"$addToSet": bson.M{"following": target}}
	})
}

func (r *UserRepository) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	return r.updateEdge(ctx, userID, targetID, func(target primitive.ObjectID) bson.M {
		return bson.M{"$pull": bson.M{"following": target}}
	})
}

func (r *UserRepository) AddFollower(ctx context.Context, userID, followerID string, at time.Time) error {
	return r.updateEdge(ctx, userID, followerID, func(follower primitive.ObjectID) bson.M {
		return addFollowerUpdate(follower, at)
	})
}

func (r *UserRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return r.updateEdge(ctx, userID, followerID, removeFollowerUpdate)
}

func (r *UserRepository) updateEdge(ctx context.Context, userID, otherID string, build func(primitive.ObjectID) bson.M) error {
	oid, err := parseID(userID, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	other, err := parseID(otherID, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, build(other))
	if err != nil {
		return fmt.Errorf("update follow edge: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) DetachFromGraph(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{bson.M{"followers": oid}, bson.M{"following": oid}}}
	update := bson.M{
		"$pull":  bson.M{"followers": oid, "following": oid},
		"$unset": bson.M{"followedAt." + oid.Hex(): ""},
	}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("detach user from graph: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// profileSet builds the $set document for the non-nil fields of update.
func profileSet(update domain.ProfileUpdate) bson.M {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Institution != nil {
		set["institution"] = *update.Institution
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	if update.Skills != nil {
		set["skills"] = update.Skills
	}
	return set
}

func addFollowerUpdate(follower primitive.ObjectID, at time.Time) bson.M {
	return bson.M{
		"$addToSet": bson.M{"followers": follower},
		"$set":      bson.M{"followedAt." + follower.Hex(): at.UTC()},
	}
}

func removeFollowerUpdate(follower primitive.ObjectID) bson.M {
	return bson.M{
		"$pull":  bson.M{"followers": follower},
		"$unset": bson.M{"followedAt." + follower.Hex(): ""},
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
