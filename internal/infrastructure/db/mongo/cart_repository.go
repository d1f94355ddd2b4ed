package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront/storefront-api/internal/core/domain"
)

type cartItemDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	ProductID string    `bson:"product_id"`
	Quantity  int       `bson:"quantity"`
	CreatedAt time.Time `bson:"created_at"`
}

// cartRowDoc is a cart item with its product joined by $lookup. Product is
// nil when the referenced product was deleted.
type cartRowDoc struct {
	ID        string      `bson:"_id"`
	UserID    string      `bson:"user_id"`
	ProductID string      `bson:"product_id"`
	Quantity  int         `bson:"quantity"`
	CreatedAt time.Time   `bson:"created_at"`
	Product   *productDoc `bson:"product,omitempty"`
}

// CartRepository implements ports.CartRepository using MongoDB.
type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(collectionCartItems)}
}

// ListByUser returns the user's lines, newest first, each joined with its
// product.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user_id", Value: userID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionProducts},
			{Key: "localField", Value: "product_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$product"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate cart: %w", err)
	}
	defer cur.Close(ctx)

	var rows []cartRowDoc
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(rows))
	for _, row := range rows {
		line := domain.CartLine{
			ID:        row.ID,
			UserID:    row.UserID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			CreatedAt: row.CreatedAt.UTC(),
		}
		if row.Product != nil {
			p, err := row.Product.toDomain()
			if err != nil {
				return nil, err
			}
			line.Product = p
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (r *CartRepository) Insert(ctx context.Context, line *domain.CartLine) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := cartItemDoc{
		ID:        line.ID,
		UserID:    line.UserID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		CreatedAt: line.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

// UpdateQuantity sets the quantity of one of the user's lines. Matching no
// line is not an error.
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": lineID, "user_id": userID}
	update := bson.M{"$set": bson.M{"quantity": quantity}}
	if _, err := r.col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID, lineID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": lineID, "user_id": userID}); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the cart_items collection.
func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "product_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
