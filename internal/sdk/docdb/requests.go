package docdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/altivest/portal-service/internal/sdk/models"
)

// HasRegistrationConflict reports whether a registration request or an
// existing user already claims the email or phone. Backed by the unique
// indexes, not a collection scan.
func (s *service) HasRegistrationConflict(ctx context.Context, email, phone string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"phone": phone}}}

	n, err := s.db.Collection(colRegistrationRequests).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("counting registration requests: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	n, err = s.db.Collection(colUsers).CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	return n > 0, nil
}

func (s *service) CreateRegistrationRequest(ctx context.Context, req models.RegistrationRequest) (models.RegistrationRequest, error) {
	req.ID = uuid.New().String()
	req.Status = models.StatusPending
	req.CreatedAt = time.Now().UTC()

	if _, err := s.db.Collection(colRegistrationRequests).InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.RegistrationRequest{}, ErrDBDuplicatedEntry
		}
		return models.RegistrationRequest{}, fmt.Errorf("inserting registration request: %w", err)
	}
	return req, nil
}

func (s *service) GetRegistrationRequest(ctx context.Context, id string) (models.RegistrationRequest, error) {
	var req models.RegistrationRequest
	err := s.db.Collection(colRegistrationRequests).FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.RegistrationRequest{}, ErrDBNotFound
		}
		return models.RegistrationRequest{}, fmt.Errorf("selecting registration request: %w", err)
	}
	return req, nil
}

func (s *service) ListRegistrationRequests(ctx context.Context, status string) ([]models.RegistrationRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cur, err := s.db.Collection(colRegistrationRequests).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing registration requests: %w", err)
	}

	var reqs []models.RegistrationRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("decoding registration requests: %w", err)
	}
	return reqs, nil
}

func (s *service) ResolveRegistrationRequest(ctx context.Context, id, status string) error {
	res, err := s.db.Collection(colRegistrationRequests).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("resolving registration request: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}
	return nil
}

func (s *service) CreateTransactionRequest(ctx context.Context, req models.TransactionRequest) (models.TransactionRequest, error) {
	req.ID = uuid.New().String()
	req.Status = models.StatusPending
	req.CreatedAt = time.Now().UTC()

	if _, err := s.db.Collection(colTransactionRequests).InsertOne(ctx, req); err != nil {
		return models.TransactionRequest{}, fmt.Errorf("inserting transaction request: %w", err)
	}
	return req, nil
}

func (s *service) ListTransactionRequests(ctx context.Context, userID, domain string) ([]models.TransactionRequest, error) {
	filter := bson.M{"user_id": userID}
	if domain != "" {
		filter["domain"] = domain
	}

	cur, err := s.db.Collection(colTransactionRequests).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing transaction requests: %w", err)
	}

	var reqs []models.TransactionRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("decoding transaction requests: %w", err)
	}
	return reqs, nil
}
