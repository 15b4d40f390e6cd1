package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cloudnative/account-service/internal/core/domain"
)

type AssetRepository struct {
	coll *mongo.Collection
}

func NewAssetRepository(db *mongo.Database) *AssetRepository {
	return &AssetRepository{coll: db.Collection(collectionAssets)}
}

type assetDoc struct {
	ID           string    `bson:"_id"`
	FileName     string    `bson:"file_name"`
	Key          string    `bson:"key"`
	URL          string    `bson:"url"`
	ContentType  string    `bson:"content_type"`
	Size         int64     `bson:"size"`
	AccountEmail string    `bson:"account_email"`
	UploadedAt   time.Time `bson:"upload_date"`
}

// Insert writes asset metadata. A second row for the same account violates
// the unique index and is returned as an error.
func (r *AssetRepository) Insert(ctx context.Context, a *domain.ProfileAsset) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := assetDoc{
		ID:           a.ID,
		FileName:     a.FileName,
		Key:          a.Key,
		URL:          a.URL,
		ContentType:  a.ContentType,
		Size:         a.Size,
		AccountEmail: a.AccountEmail,
		UploadedAt:   a.UploadedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return wrapErr("insert profile asset", err)
	}
	return nil
}

func (r *AssetRepository) FindByID(ctx context.Context, id string) (*domain.ProfileAsset, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByAccountEmail returns the row owned by email whether or not the
// account links it.
func (r *AssetRepository) FindByAccountEmail(ctx context.Context, email string) (*domain.ProfileAsset, error) {
	return r.findOne(ctx, bson.M{"account_email": email})
}

func (r *AssetRepository) findOne(ctx context.Context, filter bson.M) (*domain.ProfileAsset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc assetDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, wrapErr("find profile asset", err)
	}
	return &domain.ProfileAsset{
		ID:           doc.ID,
		FileName:     doc.FileName,
		Key:          doc.Key,
		URL:          doc.URL,
		ContentType:  doc.ContentType,
		Size:         doc.Size,
		AccountEmail: doc.AccountEmail,
		UploadedAt:   doc.UploadedAt.UTC(),
	}, nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return wrapErr("delete profile asset", err)
	}
	return nil
}
