package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
)

type Store struct {
	users    *mongo.Collection
	products *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		users:    db.Collection(usersCollection),
		products: db.Collection(productsCollection),
	}
}

// EnsureIndexes creates the unique email index and the token lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("mongodb: create user indexes: %w", err)
	}

	_, err = s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: create product indexes: %w", err)
	}
	return nil
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*auth.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("mongodb: find user: %w", err)
	}
	return doc.user(), nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*auth.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) UserByToken(ctx context.Context, token string) (*auth.User, error) {
	if token == "" {
		return nil, auth.ErrUserNotFound
	}
	return s.findUser(ctx, bson.M{"token": token})
}

func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	u, err := s.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return "", catalog.ErrRequesterNotFound
		}
		return "", err
	}
	return u.Email, nil
}

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	doc := toUserDoc(u)
	doc.Version = 1
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("mongodb: insert user: %w", err)
	}
	u.Version = 1
	return nil
}

func (s *Store) SaveUser(ctx context.Context, u *auth.User) error {
	doc := toUserDoc(u)
	doc.Version = u.Version + 1

	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": u.ID, "version": u.Version}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("mongodb: replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.UserByID(ctx, u.ID); err != nil {
			return err
		}
		return auth.ErrVersionConflict
	}
	u.Version = doc.Version
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodb: delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *Store) ProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	var doc productDoc
	if err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("mongodb: find product: %w", err)
	}
	return doc.product(), nil
}

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	doc := toProductDoc(p)
	doc.Version = 1
	if _, err := s.products.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongodb: insert product: %w", err)
	}
	p.Version = 1
	return nil
}

func (s *Store) SaveProduct(ctx context.Context, p *catalog.Product) error {
	doc := toProductDoc(p)
	doc.Version = p.Version + 1

	res, err := s.products.ReplaceOne(ctx, bson.M{"_id": p.ID, "version": p.Version}, doc)
	if err != nil {
		return fmt.Errorf("mongodb: replace product: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.ProductByID(ctx, p.ID); err != nil {
			return err
		}
		return catalog.ErrVersionConflict
	}
	p.Version = doc.Version
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("mongodb: delete product: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) QueryProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.products.Find(ctx, productFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: query products: %w", err)
	}

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decode products: %w", err)
	}

	out := make([]catalog.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.product())
	}
	return out, nil
}
