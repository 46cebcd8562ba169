package server

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/errors"
)

// User is a stored account. The password hash never leaves the server.
type User struct {
	ID           string `bson:"_id" json:"id"`
	Email        string `bson:"email" json:"email"`
	PasswordHash []byte `bson:"password_hash" json:"-"`
}

// MapContent is the stored graph payload, shaped exactly like the
// client's wire format.
type MapContent struct {
	Graph        concept.Graph            `bson:"graph" json:"graph"`
	Explanations map[string]string        `bson:"explanations" json:"explanations"`
	SubMaps      map[string]concept.Graph `bson:"sub_maps" json:"subMaps"`
}

// MapRow is one stored concept map.
type MapRow struct {
	ID        string     `bson:"_id" json:"id"`
	UserID    string     `bson:"user_id" json:"-"`
	Title     string     `bson:"title" json:"title"`
	Content   MapContent `bson:"content" json:"content"`
	IsPublic  bool       `bson:"is_public" json:"-"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// ==========================================================================
// Mongo-backed stores
// ==========================================================================

// Stores bundles the mongo-backed implementations sharing one client.
type Stores struct {
	Users *MongoUsers
	Maps  *MongoMaps

	client *mongo.Client
}

// NewStores connects to mongo and prepares the collections, including
// the unique email index.
func NewStores(ctx context.Context, uri, database string) (*Stores, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongo")
	}
	db := client.Database(database)

	users := &MongoUsers{coll: db.Collection("users")}
	if _, err := users.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create email index")
	}

	maps := &MongoMaps{coll: db.Collection("maps")}
	if _, err := maps.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create maps index")
	}

	return &Stores{Users: users, Maps: maps, client: client}, nil
}

// Close disconnects the shared mongo client.
func (s *Stores) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// MongoUsers implements UserStore on a mongo collection.
type MongoUsers struct {
	coll *mongo.Collection
}

// Create registers a new account with a bcrypt-hashed password.
func (s *MongoUsers) Create(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, errors.New(errors.ErrCodeInvalidInput, "a valid email is required")
	}
	if len(password) < 8 {
		return User{}, errors.New(errors.ErrCodeInvalidInput, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.Wrap(errors.ErrCodeInternal, err, "hash password")
	}

	user := User{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return User{}, errors.New(errors.ErrCodeInvalidInput, "email is already registered")
		}
		return User{}, errors.Wrap(errors.ErrCodeInternal, err, "insert user")
	}
	return user, nil
}

// Authenticate checks the credentials and returns the stored account.
func (s *MongoUsers) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return User{}, errors.New(errors.ErrCodeUnauthorized, "unknown account")
	}
	if err != nil {
		return User{}, errors.Wrap(errors.ErrCodeInternal, err, "find user")
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return User{}, errors.New(errors.ErrCodeUnauthorized, "wrong password")
	}
	return user, nil
}

var _ UserStore = (*MongoUsers)(nil)

// MongoMaps implements MapStore on a mongo collection.
type MongoMaps struct {
	coll *mongo.Collection
}

// List returns the user's maps, most recent first.
func (s *MongoMaps) List(ctx context.Context, userID string) ([]MapRow, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list maps")
	}
	var rows []MapRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode maps")
	}
	return rows, nil
}

// Insert stores a row, assigning identity and timestamp when absent.
func (s *MongoMaps) Insert(ctx context.Context, row MapRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, row); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "insert map")
	}
	return nil
}

// DeleteByTitle removes the first map matching title for the user.
func (s *MongoMaps) DeleteByTitle(ctx context.Context, userID, title string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID, "title": title}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete map")
	}
	return nil
}

// DeleteAll wipes the user's collection.
func (s *MongoMaps) DeleteAll(ctx context.Context, userID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete maps")
	}
	return nil
}

var _ MapStore = (*MongoMaps)(nil)
