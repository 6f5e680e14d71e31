// Package docdb provides document-database operations for the portal service.
package docdb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/altivest/portal-service/internal/sdk/models"
)

var (
	ErrDBNotFound        = errors.New("document not found")
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
)

// Service represents a service that interacts with the document database.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// Close terminates the database connection.
	Close() error

	// User operations
	GetUserByID(ctx context.Context, userID string) (models.UserProfile, error)
	GetUserByEmail(ctx context.Context, email string) (models.UserProfile, error)
	CreateUser(ctx context.Context, user models.NewUserProfile) (models.UserProfile, error)
	UpdateUserProfile(ctx context.Context, userID string, update ProfileUpdate) error
	UpdateUserPassword(ctx context.Context, userID string, password []byte) error
	SetUserLoggedIn(ctx context.Context, userID string, loggedIn bool) error
	MarkEmailVerified(ctx context.Context, userID string) error
	UpdateKYCSection(ctx context.Context, userID, section string, answers any) error
	GetKYC(ctx context.Context, userID string) (models.KYCAnswers, error)

	// Registration request operations
	HasRegistrationConflict(ctx context.Context, email, phone string) (bool, error)
	CreateRegistrationRequest(ctx context.Context, req models.RegistrationRequest) (models.RegistrationRequest, error)
	GetRegistrationRequest(ctx context.Context, id string) (models.RegistrationRequest, error)
	ListRegistrationRequests(ctx context.Context, status string) ([]models.RegistrationRequest, error)
	ResolveRegistrationRequest(ctx context.Context, id, status string) error

	// Action and refresh token operations
	CreateActionToken(ctx context.Context, token models.NewActionToken) (models.ActionToken, error)
	GetActionToken(ctx context.Context, code string) (models.ActionToken, error)
	MarkActionTokenUsed(ctx context.Context, id string) error
	CreateRefreshToken(ctx context.Context, token models.NewRefreshToken) (models.RefreshToken, error)
	GetRefreshTokenByToken(ctx context.Context, token []byte) (models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID string) error
	DeleteRefreshTokensByUserID(ctx context.Context, userID string) error

	// Catalog operations
	ListBonds(ctx context.Context) ([]models.Bond, error)
	GetBond(ctx context.Context, id string) (models.Bond, error)
	ListIPOs(ctx context.Context) ([]models.IPO, error)
	GetIPO(ctx context.Context, id string) (models.IPO, error)
	ListTermProducts(ctx context.Context) ([]models.TermProduct, error)
	GetTermProduct(ctx context.Context, id string) (models.TermProduct, error)

	// Holding operations
	ListBondHoldings(ctx context.Context, userID string) ([]models.BondHolding, error)
	ListIPOHoldings(ctx context.Context, userID string) ([]models.IPOHolding, error)
	ListTermDeposits(ctx context.Context, userID string) ([]models.TermDeposit, error)
	ListStocks(ctx context.Context, userID string) ([]models.StockHolding, error)
	ListCashDeposits(ctx context.Context, userID string) ([]models.CashDeposit, error)
	GetBankingDetails(ctx context.Context, userID string) (models.BankingDetails, error)
	UpsertBankingDetails(ctx context.Context, details models.BankingDetails) error
	CreateBondHolding(ctx context.Context, h models.BondHolding) error
	CreateIPOHolding(ctx context.Context, h models.IPOHolding) error
	CreateTermDeposit(ctx context.Context, h models.TermDeposit) error

	// Transaction request operations
	CreateTransactionRequest(ctx context.Context, req models.TransactionRequest) (models.TransactionRequest, error)
	ListTransactionRequests(ctx context.Context, userID, domain string) ([]models.TransactionRequest, error)

	// Notification operations
	CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error)
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, userID, id string) error
	CreateAdminNotification(ctx context.Context, category, message string) (models.Notification, error)
	ListAdminNotifications(ctx context.Context, category string) ([]models.Notification, error)

	// Document metadata operations
	CreateDocRecord(ctx context.Context, rec models.DocRecord) (models.DocRecord, error)
	ListDocRecords(ctx context.Context, userID string) ([]models.DocRecord, error)
	GetDocRecord(ctx context.Context, userID, name string) (models.DocRecord, error)
	DeleteDocRecord(ctx context.Context, userID, name string) error

	// Settings operations
	GetPasswordPolicy(ctx context.Context) (models.PasswordPolicy, error)
	SetPasswordPolicy(ctx context.Context, strong bool) error
}

type service struct {
	client *mongo.Client
	db     *mongo.Database
}

var (
	uri        = os.Getenv("PORTAL_DB_URI")
	database   = os.Getenv("PORTAL_DB_DATABASE")
	dbInstance *service
)

// New connects to the document database and ensures the indexes the portal
// relies on. The connection is reused across calls.
func New() Service {
	if dbInstance != nil {
		return dbInstance
	}

	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if database == "" {
		database = "portal"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal(err)
	}

	dbInstance = &service{
		client: client,
		db:     client.Database(database),
	}

	if err := dbInstance.ensureIndexes(ctx); err != nil {
		log.Printf("ensuring indexes: %v", err)
	}

	return dbInstance
}

// ensureIndexes creates the uniqueness and lookup indexes. The unique indexes
// on users.email and registration_requests email/phone replace the pre-submit
// full-collection scan the duplicate check would otherwise need.
func (s *service) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	if _, err := s.db.Collection(colUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	for _, key := range []string{"email", "phone"} {
		if _, err := s.db.Collection(colRegistrationRequests).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		}); err != nil {
			return fmt.Errorf("registration_requests %s index: %w", key, err)
		}
	}

	if _, err := s.db.Collection(colActionTokens).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("action_tokens code index: %w", err)
	}

	for _, col := range []string{colBondHoldings, colIPOHoldings, colTermDeposits, colStocks, colCashDeposits, colTransactionRequests, colNotifications, colDocs} {
		if _, err := s.db.Collection(col).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		}); err != nil {
			return fmt.Errorf("%s user_id index: %w", col, err)
		}
	}

	return nil
}

// Collection names.
const (
	colUsers                = "users"
	colRegistrationRequests = "registration_requests"
	colActionTokens         = "action_tokens"
	colRefreshTokens        = "refresh_tokens"
	colBonds                = "bonds"
	colIPOs                 = "ipos"
	colTermProducts         = "fixed_term_deposits"
	colBondHoldings         = "bond_holdings"
	colIPOHoldings          = "ipo_holdings"
	colTermDeposits         = "term_deposits"
	colStocks               = "stocks"
	colCashDeposits         = "cash_deposits"
	colBankingDetails       = "banking_details"
	colTransactionRequests  = "transaction_requests"
	colNotifications        = "notifications"
	colAdminNotifications   = "admin_notifications"
	colDocs                 = "docs"
	colSettings             = "settings"
)

// Health pings the database and reports connection status.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := s.client.Ping(ctx, nil); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	return stats
}

// Close disconnects from the document database.
func (s *service) Close() error {
	log.Printf("Disconnected from database: %s", database)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
