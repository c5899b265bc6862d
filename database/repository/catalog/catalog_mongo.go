package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bengkelbot/database"
	"bengkelbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrServiceNotFound is returned when no catalog entry matches a name.
var ErrServiceNotFound = errors.New("service not found in catalog")

// CatalogRepository provides read access to the service catalog.
type CatalogRepository interface {
	List(ctx context.Context) ([]models.ServiceItem, error)
	GetByName(ctx context.Context, name string) (*models.ServiceItem, error)
}

// MongoCatalogRepo implements CatalogRepository using MongoDB.
type MongoCatalogRepo struct {
	coll *mongo.Collection
}

// NewMongoCatalogRepo returns a repository backed by the "services" collection.
func NewMongoCatalogRepo() *MongoCatalogRepo {
	return &MongoCatalogRepo{coll: database.Collection("services")}
}

// List returns the full catalog.
func (r *MongoCatalogRepo) List(ctx context.Context) ([]models.ServiceItem, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(cctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer cursor.Close(cctx)

	var items []models.ServiceItem
	if err := cursor.All(cctx, &items); err != nil {
		return nil, fmt.Errorf("error decoding catalog: %w", err)
	}
	return items, nil
}

// GetByName resolves a catalog entry by case-insensitive name match.
func (r *MongoCatalogRepo) GetByName(ctx context.Context, name string) (*models.ServiceItem, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	wanted := strings.ToLower(strings.TrimSpace(name))
	for i := range items {
		if strings.ToLower(items[i].Name) == wanted {
			return &items[i], nil
		}
	}
	return nil, ErrServiceNotFound
}
