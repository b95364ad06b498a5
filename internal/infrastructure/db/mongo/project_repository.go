package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

const projectsCollection = "projects"

// ProjectRepository implements ports.ProjectRepository. Likes, bookmarks,
// collaborators and comments are embedded in the project document.
type ProjectRepository struct {
	coll *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{coll: db.Collection(projectsCollection)}
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      primitive.ObjectID `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type projectDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Title           string               `bson:"title"`
	Description     string               `bson:"description"`
	LongDescription string               `bson:"longDescription"`
	Tags            []string             `bson:"tags"`
	GithubURL       string               `bson:"githubUrl"`
	DemoURL         string               `bson:"demoUrl"`
	Images          []string             `bson:"images"`
	Author          primitive.ObjectID   `bson:"author"`
	Progress        int                  `bson:"progress"`
	Status          string               `bson:"status"`
	Views           int64                `bson:"views"`
	Collaborators   []primitive.ObjectID `bson:"collaborators"`
	Bookmarks       []primitive.ObjectID `bson:"bookmarks"`
	Likes           []primitive.ObjectID `bson:"likes"`
	LikedAt         map[string]time.Time `bson:"likedAt,omitempty"`
	Comments        []commentDoc         `bson:"comments"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func newProjectDoc(p *domain.Project) (projectDoc, error) {
	author, err := primitive.ObjectIDFromHex(p.AuthorID)
	if err != nil {
		return projectDoc{}, fmt.Errorf("author id %q: %w", p.AuthorID, domain.ErrValidation)
	}
	comments := make([]commentDoc, 0, len(p.Comments))
	for _, c := range p.Comments {
		cd, err := newCommentDoc(c)
		if err != nil {
			return projectDoc{}, err
		}
		comments = append(comments, cd)
	}
	return projectDoc{
		Title:           p.Title,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Tags:            nonNilStrings(p.Tags),
		GithubURL:       p.GithubURL,
		DemoURL:         p.DemoURL,
		Images:          nonNilStrings(p.Images),
		Author:          author,
		Progress:        p.Progress,
		Status:          string(p.Status),
		Views:           p.Views,
		Collaborators:   toObjectIDs(p.Collaborators),
		Bookmarks:       toObjectIDs(p.Bookmarks),
		Likes:           toObjectIDs(p.Likes),
		LikedAt:         p.LikedAt,
		Comments:        comments,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func newCommentDoc(c domain.Comment) (commentDoc, error) {
	id, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return commentDoc{}, fmt.Errorf("comment id %q: %w", c.ID, domain.ErrValidation)
	}
	user, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return commentDoc{}, fmt.Errorf("comment user %q: %w", c.UserID, domain.ErrValidation)
	}
	return commentDoc{ID: id, User: user, Text: c.Text, CreatedAt: c.CreatedAt.UTC()}, nil
}

func (d projectDoc) toDomain() *domain.Project {
	comments := make([]domain.Comment, len(d.Comments))
	for i, c := range d.Comments {
		comments[i] = domain.Comment{ID: c.ID.Hex(), UserID: c.User.Hex(), Text: c.Text, CreatedAt: c.CreatedAt}
	}
	return &domain.Project{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Description:     d.Description,
		LongDescription: d.LongDescription,
		Tags:            nonNilStrings(d.Tags),
		GithubURL:       d.GithubURL,
		DemoURL:         d.DemoURL,
		Images:          nonNilStrings(d.Images),
		AuthorID:        d.Author.Hex(),
		Progress:        d.Progress,
		Status:          domain.ProjectStatus(d.Status),
		Views:           d.Views,
		Collaborators:   toHexes(d.Collaborators),
		Bookmarks:       toHexes(d.Bookmarks),
		Likes:           toHexes(d.Likes),
		LikedAt:         d.LikedAt,
		Comments:        comments,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	doc, err := newProjectDoc(p)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns matching projects, newest first.
func (r *ProjectRepository) List(ctx context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	filter, err := projectFilter(f)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	out := make([]*domain.Project, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// projectFilter translates the list filter. The search term is matched
// literally, case-insensitively.
func projectFilter(f ports.ProjectFilter) (bson.M, error) {
	filter := bson.M{}
	if f.AuthorID != "" {
		author, err := primitive.ObjectIDFromHex(f.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("author filter %q: %w", f.AuthorID, domain.ErrValidation)
		}
		filter["author"] = author
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"longDescription": re},
		}
	}
	if len(f.Tags) > 0 {
		filter["tags"] = bson.M{"$in": f.Tags}
	}
	return filter, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	oid, err := parseID(p.ID, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": editableSet(p)})
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// editableSet covers the fields an author may change; social state is only
// touched through the dedicated operations.
func editableSet(p *domain.Project) bson.M {
	return bson.M{
		"title":           p.Title,
		"description":     p.Description,
		"longDescription": p.LongDescription,
		"tags":            nonNilStrings(p.Tags),
		"githubUrl":       p.GithubURL,
		"demoUrl":         p.DemoURL,
		"images":          nonNilStrings(p.Images),
		"progress":        p.Progress,
		"status":          string(p.Status),
		"updatedAt":       p.UpdatedAt,
	}
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) AddLike(ctx context.Context, projectID, userID string, at time.Time) (int, error) {
	doc, err := r.findAndUpdate(ctx, projectID, userID, func(user primitive.ObjectID) bson.M {
		return bson.M{
			"$addToSet": bson.M{"likes": user},
			"$set":      bson.M{"likedAt." + user.Hex(): at.UTC()},
		}
	})
	if err != nil {
		return 0, err
	}
	return len(doc.Likes), nil
}

func (r *ProjectRepository) RemoveLike(ctx context.Context, projectID, userID string) (int, error) {
	doc, err := r.findAndUpdate(ctx, projectID, userID, func(user primitive.ObjectID) bson.M {
		return bson.M{
			"$pull":  bson.M{"likes": user},
			"$unset": bson.M{"likedAt." + user.Hex(): ""},
		}
	})
	if err != nil {
		return 0, err
	}
	return len(doc.Likes), nil
}

func (r *ProjectRepository) AddBookmark(ctx context.Context, projectID, userID string) error {
	_, err := r.findAndUpdate(ctx, projectID, userID, func(user primitive.ObjectID) bson.M {
		return bson.M{"$addToSet": bson.M{"bookmarks": user}}
	})
	return err
}

func (r *ProjectRepository) RemoveBookmark(ctx context.Context, projectID, userID string) error {
	_, err := r.findAndUpdate(ctx, projectID, userID, func(user primitive.ObjectID) bson.M {
		return bson.M{"$pull": bson.M{"bookmarks": user}}
	})
	return err
}

func (r *ProjectRepository) AddCollaborator(ctx context.Context, projectID, userID string) ([]string, error) {
	doc, err := r.findAndUpdate(ctx, projectID, userID, func(user primitive.ObjectID) bson.M {
		return bson.M{"$addToSet": bson.M{"collaborators": user}}
	})
	if err != nil {
		return nil, err
	}
	return toHexes(doc.Collaborators), nil
}

func (r *ProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID string) ([]string, error) {
	doc, err := r.findAndUpdate(ctx, projectID, userID, func(user primitive.ObjectID) bson.M {
		return bson.M{"$pull": bson.M{"collaborators": user}}
	})
	if err != nil {
		return nil, err
	}
	return toHexes(doc.Collaborators), nil
}

func (r *ProjectRepository) findAndUpdate(ctx context.Context, projectID, userID string, build func(primitive.ObjectID) bson.M) (*projectDoc, error) {
	oid, err := parseID(projectID, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	user, err := parseID(userID, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		build(user),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &doc, nil
}

func (r *ProjectRepository) PushComment(ctx context.Context, projectID string, c domain.Comment) error {
	oid, err := parseID(projectID, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	doc, err := newCommentDoc(c)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, oid, bson.M{"$push": bson.M{"comments": doc}})
}

func (r *ProjectRepository) PullComment(ctx context.Context, projectID, commentID string) error {
	oid, err := parseID(projectID, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	cid, err := parseID(commentID, domain.ErrCommentNotFound)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, oid, bson.M{"$pull": bson.M{"comments": bson.M{"_id": cid}}})
}

func (r *ProjectRepository) updateOne(ctx context.Context, oid primitive.ObjectID, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) IncrementViews(ctx context.Context, projectID string) (int64, error) {
	oid, err := parseID(projectID, domain.ErrProjectNotFound)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		Views int64 `bson:"views"`
	}
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"views": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrProjectNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return doc.Views, nil
}

func (r *ProjectRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	oid, err := parseID(authorID, domain.ErrUserNotFound)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"author": oid})
	if err != nil {
		return 0, fmt.Errorf("delete projects by author: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ProjectRepository) DetachUser(ctx context.Context, userID string) error {
	oid, err := parseID(userID, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, update := detachUserUpdate(oid)
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("detach user from projects: %w", err)
	}
	return nil
}

func detachUserUpdate(user primitive.ObjectID) (bson.M, bson.M) {
	filter := bson.M{"$or": bson.A{
		bson.M{"likes": user},
		bson.M{"bookmarks": user},
		bson.M{"collaborators": user},
		bson.M{"comments.user": user},
	}}
	update := bson.M{
		"$pull": bson.M{
			"likes":         user,
			"bookmarks":     user,
			"collaborators": user,
			"comments":      bson.M{"user": user},
		},
		"$unset": bson.M{"likedAt." + user.Hex(): ""},
	}
	return filter, update
}

// EnsureIndexes creates the indexes backing the list filters.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
