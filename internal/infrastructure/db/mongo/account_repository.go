package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cloudnative/account-service/internal/core/domain"
)

type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Email          string             `bson:"email"`
	PasswordHash   string             `bson:"password_hash"`
	FirstName      string             `bson:"first_name"`
	LastName       string             `bson:"last_name"`
	Verified       bool               `bson:"verified"`
	ProfileAssetID string             `bson:"profile_asset_id,omitempty"`
	CreatedAt      time.Time          `bson:"account_created"`
	UpdatedAt      time.Time          `bson:"account_updated"`
}

func toAccountDoc(a *domain.Account) accountDoc {
	id, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		id = primitive.NewObjectID()
	}
	return accountDoc{
		ID:             id,
		Email:          a.Email,
		PasswordHash:   a.PasswordHash,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Verified:       a.Verified,
		ProfileAssetID: a.ProfileAssetID,
		CreatedAt:      a.CreatedAt.UTC(),
		UpdatedAt:      a.UpdatedAt.UTC(),
	}
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Verified:       d.Verified,
		ProfileAssetID: d.ProfileAssetID,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, wrapErr("count accounts", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, wrapErr("find account", err)
	}
	return doc.toDomain(), nil
}

// Create inserts account and returns it with its generated ID. The unique
// index on email turns a concurrent duplicate into domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toAccountDoc(account)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, wrapErr("insert account", err)
	}
	return doc.toDomain(), nil
}

// UpdateProfile writes the self-service fields only, so a concurrent
// verification or picture change is not overwritten.
func (r *AccountRepository) UpdateProfile(ctx context.Context, account *domain.Account) error {
	return r.update(ctx, "update account", account.Email, bson.M{
		"$set": bson.M{
			"password_hash":   account.PasswordHash,
			"first_name":      account.FirstName,
			"last_name":       account.LastName,
			"account_updated": account.UpdatedAt.UTC(),
		},
	})
}

func (r *AccountRepository) MarkVerified(ctx context.Context, email string, at time.Time) error {
	return r.update(ctx, "verify account", email, bson.M{
		"$set": bson.M{"verified": true, "account_updated": at.UTC()},
	})
}

func (r *AccountRepository) SetProfileAsset(ctx context.Context, email, assetID string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{"profile_asset_id": assetID, "account_updated": at.UTC()},
	}
	if assetID == "" {
		update = bson.M{
			"$set":   bson.M{"account_updated": at.UTC()},
			"$unset": bson.M{"profile_asset_id": ""},
		}
	}
	return r.update(ctx, "link profile asset", email, update)
}

func (r *AccountRepository) update(ctx context.Context, op, email string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return wrapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
