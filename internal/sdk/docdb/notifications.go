package docdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/altivest/portal-service/internal/sdk/models"
)

func (s *service) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now().UTC()

	if _, err := s.db.Collection(colNotifications).InsertOne(ctx, n); err != nil {
		return models.Notification{}, fmt.Errorf("inserting notification: %w", err)
	}
	return n, nil
}

func (s *service) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	cur, err := s.db.Collection(colNotifications).Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	var notifications []models.Notification
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	return notifications, nil
}

// DeleteNotification removes a single notification. The user scope in the
// filter keeps one user from deleting another's feed entries.
func (s *service) DeleteNotification(ctx context.Context, userID, id string) error {
	res, err := s.db.Collection(colNotifications).DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrDBNotFound
	}
	return nil
}

func (s *service) CreateAdminNotification(ctx context.Context, category, message string) (models.Notification, error) {
	n := models.Notification{
		ID:        uuid.New().String(),
		Category:  category,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.db.Collection(colAdminNotifications).InsertOne(ctx, n); err != nil {
		return models.Notification{}, fmt.Errorf("inserting admin notification: %w", err)
	}
	return n, nil
}

func (s *service) ListAdminNotifications(ctx context.Context, category string) ([]models.Notification, error) {
	cur, err := s.db.Collection(colAdminNotifications).Find(ctx,
		bson.M{"category": category},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing admin notifications: %w", err)
	}

	var notifications []models.Notification
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decoding admin notifications: %w", err)
	}
	return notifications, nil
}
