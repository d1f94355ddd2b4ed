package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// productDoc is the stored shape of a product. Prices are Decimal128 so that
// money never passes through float64.
type productDoc struct {
	ID            string                `bson:"_id"`
	Name          string                `bson:"name"`
	Description   *string               `bson:"description,omitempty"`
	Price         primitive.Decimal128  `bson:"price"`
	OriginalPrice *primitive.Decimal128 `bson:"original_price,omitempty"`
	Category      string                `bson:"category"`
	ImageURL      *string               `bson:"image_url,omitempty"`
	IsVisible     bool                  `bson:"is_visible"`
	IsOnSale      bool                  `bson:"is_on_sale"`
	Stock         int                   `bson:"stock"`
	CreatedAt     time.Time             `bson:"created_at"`
	UpdatedAt     time.Time             `bson:"updated_at"`
}

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

// List returns the products matching filter, newest first.
func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.VisibleOnly {
		filter["is_visible"] = true
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain()
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newProductDoc(p)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update applies the patch with a single $set/$unset.
func (r *ProductRepository) Update(ctx context.Context, id string, patch ports.ProductPatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update, err := patchUpdate(patch)
	if err != nil {
		return err
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the products collection.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_visible", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func patchUpdate(p ports.ProductPatch) (bson.M, error) {
	set := bson.M{"updated_at": p.UpdatedAt.UTC()}
	unset := bson.M{}

	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		d, err := toDecimal128(*p.Price)
		if err != nil {
			return nil, err
		}
		set["price"] = d
	}
	switch {
	case p.ClearOriginalPrice:
		unset["original_price"] = ""
	case p.OriginalPrice != nil:
		d, err := toDecimal128(*p.OriginalPrice)
		if err != nil {
			return nil, err
		}
		set["original_price"] = d
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	switch {
	case p.ClearImageURL:
		unset["image_url"] = ""
	case p.ImageURL != nil:
		set["image_url"] = *p.ImageURL
	}
	if p.IsVisible != nil {
		set["is_visible"] = *p.IsVisible
	}
	if p.IsOnSale != nil {
		set["is_on_sale"] = *p.IsOnSale
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}

func newProductDoc(p *domain.Product) (*productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	doc := &productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		IsVisible:   p.IsVisible,
		IsOnSale:    p.IsOnSale,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
	if p.OriginalPrice != nil {
		orig, err := toDecimal128(*p.OriginalPrice)
		if err != nil {
			return nil, err
		}
		doc.OriginalPrice = &orig
	}
	return doc, nil
}

func (d *productDoc) toDomain() (*domain.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s price: %w", d.ID, err)
	}
	p := &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		IsVisible:   d.IsVisible,
		IsOnSale:    d.IsOnSale,
		Stock:       d.Stock,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.OriginalPrice != nil {
		orig, err := fromDecimal128(*d.OriginalPrice)
		if err != nil {
			return nil, fmt.Errorf("product %s original_price: %w", d.ID, err)
		}
		p.OriginalPrice = &orig
	}
	return p, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}
