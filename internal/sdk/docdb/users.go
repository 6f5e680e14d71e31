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

// ProfileUpdate carries the user-editable profile fields. Nil pointers leave
// the stored value untouched.
type ProfileUpdate struct {
	FirstName       *string
	LastName        *string
	Phone           *string
	Address         *string
	Country         *string
	JointAccount    *bool
	SecondaryHolder *models.JointHolder
}

// KYC sections accepted by UpdateKYCSection.
const (
	SectionGoals      = "goals"
	SectionExperience = "experience"
	SectionRisk       = "risk"
	SectionFinancial  = "financial"
)

func (s *service) GetUserByID(ctx context.Context, userID string) (models.UserProfile, error) {
	var user models.UserProfile
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.UserProfile{}, ErrDBNotFound
		}
		return models.UserProfile{}, fmt.Errorf("selecting user: %w", err)
	}
	return user, nil
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (models.UserProfile, error) {
	var user models.UserProfile
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.UserProfile{}, ErrDBNotFound
		}
		return models.UserProfile{}, fmt.Errorf("selecting user by email: %w", err)
	}
	return user, nil
}

func (s *service) CreateUser(ctx context.Context, nu models.NewUserProfile) (models.UserProfile, error) {
	now := time.Now().UTC()
	user := models.UserProfile{
		ID:              uuid.New().String(),
		FirstName:       nu.FirstName,
		LastName:        nu.LastName,
		Email:           nu.Email,
		Phone:           nu.Phone,
		Password:        nu.Password,
		JointAccount:    nu.JointAccount,
		SecondaryHolder: nu.SecondaryHolder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := s.db.Collection(colUsers).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.UserProfile{}, ErrDBDuplicatedEntry
		}
		return models.UserProfile{}, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

func (s *service) UpdateUserProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.FirstName != nil {
		set["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		set["last_name"] = *update.LastName
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Address != nil {
		set["address"] = *update.Address
	}
	if update.Country != nil {
		set["country"] = *update.Country
	}
	if update.JointAccount != nil {
		set["joint_account"] = *update.JointAccount
	}
	if update.SecondaryHolder != nil {
		set["secondary_holder"] = update.SecondaryHolder
	}

	return s.updateUser(ctx, userID, bson.M{"$set": set})
}

func (s *service) UpdateUserPassword(ctx context.Context, userID string, password []byte) error {
	return s.updateUser(ctx, userID, bson.M{"$set": bson.M{
		"password":   password,
		"updated_at": time.Now().UTC(),
	}})
}

func (s *service) SetUserLoggedIn(ctx context.Context, userID string, loggedIn bool) error {
	return s.updateUser(ctx, userID, bson.M{"$set": bson.M{"logged_in": loggedIn}})
}

func (s *service) MarkEmailVerified(ctx context.Context, userID string) error {
	return s.updateUser(ctx, userID, bson.M{"$set": bson.M{"email_verified": true}})
}

// UpdateKYCSection patches a single questionnaire section, leaving the other
// sections as they were.
func (s *service) UpdateKYCSection(ctx context.Context, userID, section string, answers any) error {
	switch section {
	case SectionGoals, SectionExperience, SectionRisk, SectionFinancial:
	default:
		return fmt.Errorf("unknown kyc section %q", section)
	}

	return s.updateUser(ctx, userID, bson.M{"$set": bson.M{
		"kyc." + section: answers,
		"updated_at":     time.Now().UTC(),
	}})
}

func (s *service) GetKYC(ctx context.Context, userID string) (models.KYCAnswers, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return models.KYCAnswers{}, err
	}
	return user.KYC, nil
}

func (s *service) updateUser(ctx context.Context, userID string, update bson.M) error {
	res, err := s.db.Collection(colUsers).UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}
	return nil
}
