package docdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/altivest/portal-service/internal/sdk/models"
)

// --- catalog ---

func (s *service) ListBonds(ctx context.Context) ([]models.Bond, error) {
	var bonds []models.Bond
	if err := s.findAll(ctx, colBonds, bson.M{}, &bonds); err != nil {
		return nil, fmt.Errorf("listing bonds: %w", err)
	}
	return bonds, nil
}

func (s *service) GetBond(ctx context.Context, id string) (models.Bond, error) {
	var bond models.Bond
	if err := s.findOne(ctx, colBonds, bson.M{"_id": id}, &bond); err != nil {
		return models.Bond{}, err
	}
	return bond, nil
}

func (s *service) ListIPOs(ctx context.Context) ([]models.IPO, error) {
	var ipos []models.IPO
	if err := s.findAll(ctx, colIPOs, bson.M{}, &ipos); err != nil {
		return nil, fmt.Errorf("listing ipos: %w", err)
	}
	return ipos, nil
}

func (s *service) GetIPO(ctx context.Context, id string) (models.IPO, error) {
	var ipo models.IPO
	if err := s.findOne(ctx, colIPOs, bson.M{"_id": id}, &ipo); err != nil {
		return models.IPO{}, err
	}
	return ipo, nil
}

func (s *service) ListTermProducts(ctx context.Context) ([]models.TermProduct, error) {
	var products []models.TermProduct
	if err := s.findAll(ctx, colTermProducts, bson.M{}, &products); err != nil {
		return nil, fmt.Errorf("listing term products: %w", err)
	}
	return products, nil
}

func (s *service) GetTermProduct(ctx context.Context, id string) (models.TermProduct, error) {
	var product models.TermProduct
	if err := s.findOne(ctx, colTermProducts, bson.M{"_id": id}, &product); err != nil {
		return models.TermProduct{}, err
	}
	return product, nil
}

// --- holdings ---

func (s *service) ListBondHoldings(ctx context.Context, userID string) ([]models.BondHolding, error) {
	var holdings []models.BondHolding
	if err := s.findAll(ctx, colBondHoldings, bson.M{"user_id": userID}, &holdings); err != nil {
		return nil, fmt.Errorf("listing bond holdings: %w", err)
	}
	return holdings, nil
}

func (s *service) ListIPOHoldings(ctx context.Context, userID string) ([]models.IPOHolding, error) {
	var holdings []models.IPOHolding
	if err := s.findAll(ctx, colIPOHoldings, bson.M{"user_id": userID}, &holdings); err != nil {
		return nil, fmt.Errorf("listing ipo holdings: %w", err)
	}
	return holdings, nil
}

func (s *service) ListTermDeposits(ctx context.Context, userID string) ([]models.TermDeposit, error) {
	var deposits []models.TermDeposit
	if err := s.findAll(ctx, colTermDeposits, bson.M{"user_id": userID}, &deposits); err != nil {
		return nil, fmt.Errorf("listing term deposits: %w", err)
	}
	return deposits, nil
}

func (s *service) ListStocks(ctx context.Context, userID string) ([]models.StockHolding, error) {
	var stocks []models.StockHolding
	if err := s.findAll(ctx, colStocks, bson.M{"user_id": userID}, &stocks); err != nil {
		return nil, fmt.Errorf("listing stocks: %w", err)
	}
	return stocks, nil
}

func (s *service) ListCashDeposits(ctx context.Context, userID string) ([]models.CashDeposit, error) {
	var deposits []models.CashDeposit
	if err := s.findAll(ctx, colCashDeposits, bson.M{"user_id": userID}, &deposits); err != nil {
		return nil, fmt.Errorf("listing cash deposits: %w", err)
	}
	return deposits, nil
}

func (s *service) GetBankingDetails(ctx context.Context, userID string) (models.BankingDetails, error) {
	var details models.BankingDetails
	if err := s.findOne(ctx, colBankingDetails, bson.M{"_id": userID}, &details); err != nil {
		return models.BankingDetails{}, err
	}
	return details, nil
}

func (s *service) UpsertBankingDetails(ctx context.Context, details models.BankingDetails) error {
	_, err := s.db.Collection(colBankingDetails).ReplaceOne(ctx,
		bson.M{"_id": details.UserID}, details, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upserting banking details: %w", err)
	}
	return nil
}

func (s *service) CreateBondHolding(ctx context.Context, h models.BondHolding) error {
	h.ID = uuid.New().String()
	if _, err := s.db.Collection(colBondHoldings).InsertOne(ctx, h); err != nil {
		return fmt.Errorf("inserting bond holding: %w", err)
	}
	return nil
}

func (s *service) CreateIPOHolding(ctx context.Context, h models.IPOHolding) error {
	h.ID = uuid.New().String()
	if _, err := s.db.Collection(colIPOHoldings).InsertOne(ctx, h); err != nil {
		return fmt.Errorf("inserting ipo holding: %w", err)
	}
	return nil
}

func (s *service) CreateTermDeposit(ctx context.Context, h models.TermDeposit) error {
	h.ID = uuid.New().String()
	if _, err := s.db.Collection(colTermDeposits).InsertOne(ctx, h); err != nil {
		return fmt.Errorf("inserting term deposit: %w", err)
	}
	return nil
}

// --- shared cursor helpers ---

func (s *service) findAll(ctx context.Context, col string, filter bson.M, out any) error {
	cur, err := s.db.Collection(col).Find(ctx, filter)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (s *service) findOne(ctx context.Context, col string, filter bson.M, out any) error {
	err := s.db.Collection(col).FindOne(ctx, filter).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrDBNotFound
		}
		return fmt.Errorf("selecting from %s: %w", col, err)
	}
	return nil
}
