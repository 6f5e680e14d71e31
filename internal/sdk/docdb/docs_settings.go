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

func (s *service) CreateDocRecord(ctx context.Context, rec models.DocRecord) (models.DocRecord, error) {
	rec.ID = uuid.New().String()
	rec.UploadedAt = time.Now().UTC()

	if _, err := s.db.Collection(colDocs).InsertOne(ctx, rec); err != nil {
		return models.DocRecord{}, fmt.Errorf("inserting doc record: %w", err)
	}
	return rec, nil
}

func (s *service) ListDocRecords(ctx context.Context, userID string) ([]models.DocRecord, error) {
	cur, err := s.db.Collection(colDocs).Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing doc records: %w", err)
	}

	var recs []models.DocRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decoding doc records: %w", err)
	}
	return recs, nil
}

func (s *service) GetDocRecord(ctx context.Context, userID, name string) (models.DocRecord, error) {
	var rec models.DocRecord
	err := s.db.Collection(colDocs).FindOne(ctx, bson.M{"user_id": userID, "name": name}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.DocRecord{}, ErrDBNotFound
		}
		return models.DocRecord{}, fmt.Errorf("selecting doc record: %w", err)
	}
	return rec, nil
}

func (s *service) DeleteDocRecord(ctx context.Context, userID, name string) error {
	res, err := s.db.Collection(colDocs).DeleteOne(ctx, bson.M{"user_id": userID, "name": name})
	if err != nil {
		return fmt.Errorf("deleting doc record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrDBNotFound
	}
	return nil
}

const passwordPolicyID = "password_policy"

// GetPasswordPolicy reads the policy document. A missing document means the
// strong rule; the toggle only ever relaxes it.
func (s *service) GetPasswordPolicy(ctx context.Context) (models.PasswordPolicy, error) {
	var doc struct {
		ID     string                `bson:"_id"`
		Policy models.PasswordPolicy `bson:"policy"`
	}
	err := s.db.Collection(colSettings).FindOne(ctx, bson.M{"_id": passwordPolicyID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PasswordPolicy{Strong: true}, nil
		}
		return models.PasswordPolicy{}, fmt.Errorf("selecting password policy: %w", err)
	}
	return doc.Policy, nil
}

func (s *service) SetPasswordPolicy(ctx context.Context, strong bool) error {
	policy := models.PasswordPolicy{Strong: strong, UpdatedAt: time.Now().UTC()}
	_, err := s.db.Collection(colSettings).UpdateOne(ctx,
		bson.M{"_id": passwordPolicyID},
		bson.M{"$set": bson.M{"policy": policy}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("updating password policy: %w", err)
	}
	return nil
}
