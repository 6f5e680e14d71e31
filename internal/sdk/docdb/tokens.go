package docdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/altivest/portal-service/internal/sdk/models"
)

func (s *service) CreateActionToken(ctx context.Context, nt models.NewActionToken) (models.ActionToken, error) {
	token := models.ActionToken{
		ID:        uuid.New().String(),
		UserID:    nt.UserID,
		Mode:      nt.Mode,
		Code:      nt.Code,
		ExpiresAt: nt.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.db.Collection(colActionTokens).InsertOne(ctx, token); err != nil {
		return models.ActionToken{}, fmt.Errorf("inserting action token: %w", err)
	}
	return token, nil
}

func (s *service) GetActionToken(ctx context.Context, code string) (models.ActionToken, error) {
	var token models.ActionToken
	err := s.db.Collection(colActionTokens).FindOne(ctx, bson.M{"code": code}).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ActionToken{}, ErrDBNotFound
		}
		return models.ActionToken{}, fmt.Errorf("selecting action token: %w", err)
	}
	return token, nil
}

func (s *service) MarkActionTokenUsed(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := s.db.Collection(colActionTokens).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"used_at": now}})
	if err != nil {
		return fmt.Errorf("marking action token used: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}
	return nil
}

func (s *service) CreateRefreshToken(ctx context.Context, nt models.NewRefreshToken) (models.RefreshToken, error) {
	token := models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    nt.UserID,
		Token:     nt.Token,
		ExpiresAt: nt.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.db.Collection(colRefreshTokens).InsertOne(ctx, token); err != nil {
		return models.RefreshToken{}, fmt.Errorf("inserting refresh token: %w", err)
	}
	return token, nil
}

func (s *service) GetRefreshTokenByToken(ctx context.Context, token []byte) (models.RefreshToken, error) {
	var stored models.RefreshToken
	err := s.db.Collection(colRefreshTokens).FindOne(ctx, bson.M{"token": token}).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.RefreshToken{}, ErrDBNotFound
		}
		return models.RefreshToken{}, fmt.Errorf("selecting refresh token: %w", err)
	}
	return stored, nil
}

func (s *service) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	now := time.Now().UTC()
	res, err := s.db.Collection(colRefreshTokens).UpdateOne(ctx,
		bson.M{"_id": tokenID},
		bson.M{"$set": bson.M{"revoked_at": now}})
	if err != nil {
		return fmt.Errorf("revoking refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}
	return nil
}

func (s *service) DeleteRefreshTokensByUserID(ctx context.Context, userID string) error {
	if _, err := s.db.Collection(colRefreshTokens).DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("deleting refresh tokens: %w", err)
	}
	return nil
}
