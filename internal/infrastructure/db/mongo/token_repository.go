package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cloudnative/account-service/internal/core/domain"
)

// TokenRepository stores verification tokens with the token string as _id.
type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{coll: db.Collection(collectionTokens)}
}

type tokenDoc struct {
	Token     string    `bson:"_id"`
	Email     string    `bson:"email"`
	IssuedAt  time.Time `bson:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	Status    string    `bson:"status"`
}

func (r *TokenRepository) Insert(ctx context.Context, t *domain.VerificationToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := tokenDoc{
		Token:     t.Token,
		Email:     t.Email,
		IssuedAt:  t.IssuedAt.UTC(),
		ExpiresAt: t.ExpiresAt.UTC(),
		Status:    string(t.Status),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return wrapErr("insert token", err)
	}
	return nil
}

func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc tokenDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, wrapErr("find token", err)
	}
	return &domain.VerificationToken{
		Token:     doc.Token,
		Email:     doc.Email,
		IssuedAt:  doc.IssuedAt.UTC(),
		ExpiresAt: doc.ExpiresAt.UTC(),
		Status:    domain.TokenStatus(doc.Status),
	}, nil
}

// MarkVerified flips the token only while it is still PENDING, so two
// concurrent verifications cannot both succeed.
func (r *TokenRepository) MarkVerified(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": token, "status": string(domain.TokenPending)}
	update := bson.M{
		"$set": bson.M{
			"status":      string(domain.TokenVerified),
			"verified_at": time.Now().UTC(),
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return wrapErr("mark token verified", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTokenUsed
	}
	return nil
}
