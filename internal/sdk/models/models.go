// Package models defines the persisted documents for the investor portal.
package models

import "time"

// Registration and transaction requests are always created Pending and are
// resolved by the admin surface, never by the end-user flows.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// UserProfile is the root user document.
type UserProfile struct {
	ID              string       `bson:"_id,omitempty" json:"id"`
	FirstName       string       `bson:"first_name" json:"first_name"`
	LastName        string       `bson:"last_name" json:"last_name"`
	Email           string       `bson:"email" json:"email"`
	Phone           string       `bson:"phone" json:"phone"`
	Address         string       `bson:"address,omitempty" json:"address,omitempty"`
	Country         string       `bson:"country,omitempty" json:"country,omitempty"`
	JointAccount    bool         `bson:"joint_account" json:"joint_account"`
	SecondaryHolder *JointHolder `bson:"secondary_holder,omitempty" json:"secondary_holder,omitempty"`
	KYC             KYCAnswers   `bson:"kyc" json:"kyc"`
	Password        []byte       `bson:"password" json:"-"`
	EmailVerified   bool         `bson:"email_verified" json:"email_verified"`
	LoggedIn        bool         `bson:"logged_in" json:"logged_in"`
	IsAdmin         bool         `bson:"is_admin" json:"is_admin"`
	CreatedAt       time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updated_at"`
}

// JointHolder is the secondary account holder on a joint account.
type JointHolder struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// KYCAnswers holds the onboarding questionnaire, persisted one section at a
// time by the KYC wizard.
type KYCAnswers struct {
	Goals      *KYCGoals      `bson:"goals,omitempty" json:"goals,omitempty"`
	Experience *KYCExperience `bson:"experience,omitempty" json:"experience,omitempty"`
	Risk       *KYCRisk       `bson:"risk,omitempty" json:"risk,omitempty"`
	Financial  *KYCFinancial  `bson:"financial,omitempty" json:"financial,omitempty"`
}

type KYCGoals struct {
	PrimaryGoal  string  `bson:"primary_goal" json:"primary_goal"`
	TimeHorizon  string  `bson:"time_horizon" json:"time_horizon"`
	TargetAmount float64 `bson:"target_amount,omitempty" json:"target_amount,omitempty"`
}

type KYCExperience struct {
	YearsInvesting int      `bson:"years_investing" json:"years_investing"`
	Instruments    []string `bson:"instruments,omitempty" json:"instruments,omitempty"`
	TradesPerYear  string   `bson:"trades_per_year,omitempty" json:"trades_per_year,omitempty"`
}

type KYCRisk struct {
	Tolerance    string `bson:"tolerance" json:"tolerance"`
	LossReaction string `bson:"loss_reaction,omitempty" json:"loss_reaction,omitempty"`
}

type KYCFinancial struct {
	AnnualIncome    string `bson:"annual_income" json:"annual_income"`
	NetWorth        string `bson:"net_worth,omitempty" json:"net_worth,omitempty"`
	SourceOfFunds   string `bson:"source_of_funds" json:"source_of_funds"`
	EmploymentState string `bson:"employment_state,omitempty" json:"employment_state,omitempty"`
}

// NewUserProfile is the payload for creating a user document, built from an
// approved registration request.
type NewUserProfile struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        []byte
	JointAccount    bool
	SecondaryHolder *JointHolder
}

// RegistrationRequest is a pending signup awaiting admin approval. The
// password is stored bcrypt-hashed, never as submitted.
type RegistrationRequest struct {
	ID              string       `bson:"_id,omitempty" json:"id"`
	FirstName       string       `bson:"first_name" json:"first_name"`
	LastName        string       `bson:"last_name" json:"last_name"`
	Email           string       `bson:"email" json:"email"`
	Phone           string       `bson:"phone" json:"phone"`
	Password        []byte       `bson:"password" json:"-"`
	JointAccount    bool         `bson:"joint_account" json:"joint_account"`
	SecondaryHolder *JointHolder `bson:"secondary_holder,omitempty" json:"secondary_holder,omitempty"`
	Status          string       `bson:"status" json:"status"`
	CreatedAt       time.Time    `bson:"created_at" json:"created_at"`
}

// Catalog items users can raise transaction requests against.

type Bond struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Issuer     string    `bson:"issuer" json:"issuer"`
	CouponRate float64   `bson:"coupon_rate" json:"coupon_rate"`
	UnitPrice  float64   `bson:"unit_price" json:"unit_price"`
	Maturity   time.Time `bson:"maturity" json:"maturity"`
}

type IPO struct {
	ID         string  `bson:"_id,omitempty" json:"id"`
	Company    string  `bson:"company" json:"company"`
	SharePrice float64 `bson:"share_price" json:"share_price"`
	MinShares  int64   `bson:"min_shares" json:"min_shares"`
}

type TermProduct struct {
	ID         string  `bson:"_id,omitempty" json:"id"`
	Name       string  `bson:"name" json:"name"`
	Rate       float64 `bson:"rate" json:"rate"`
	TermMonths int     `bson:"term_months" json:"term_months"`
	MinDeposit float64 `bson:"min_deposit" json:"min_deposit"`
}

// Holding records. Created by admin approval of a transaction request;
// read-only from the portal's point of view.

type BondHolding struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Issuer       string    `bson:"issuer" json:"issuer"`
	Quantity     int64     `bson:"quantity" json:"quantity"`
	UnitValue    float64   `bson:"unit_value" json:"unit_value"`
	TotalValue   float64   `bson:"total_value" json:"total_value"`
	PurchaseDate time.Time `bson:"purchase_date" json:"purchase_date"`
	MaturityDate time.Time `bson:"maturity_date" json:"maturity_date"`
}

type IPOHolding struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Company      string    `bson:"company" json:"company"`
	Shares       int64     `bson:"shares" json:"shares"`
	SharePrice   float64   `bson:"share_price" json:"share_price"`
	PurchaseDate time.Time `bson:"purchase_date" json:"purchase_date"`
}

type TermDeposit struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Principal  float64   `bson:"principal" json:"principal"`
	Rate       float64   `bson:"rate" json:"rate"`
	StartDate  time.Time `bson:"start_date" json:"start_date"`
	TermMonths int       `bson:"term_months" json:"term_months"`
}

type StockHolding struct {
	ID     string  `bson:"_id,omitempty" json:"id"`
	UserID string  `bson:"user_id" json:"user_id"`
	Symbol string  `bson:"symbol" json:"symbol"`
	Shares int64   `bson:"shares" json:"shares"`
	Value  float64 `bson:"value" json:"value"`
}

type CashDeposit struct {
	ID     string    `bson:"_id,omitempty" json:"id"`
	UserID string    `bson:"user_id" json:"user_id"`
	Amount float64   `bson:"amount" json:"amount"`
	Date   time.Time `bson:"date" json:"date"`
}

type BankingDetails struct {
	UserID        string `bson:"_id,omitempty" json:"-"`
	BankName      string `bson:"bank_name" json:"bank_name"`
	AccountName   string `bson:"account_name" json:"account_name"`
	AccountNumber string `bson:"account_number" json:"account_number"`
	SwiftCode     string `bson:"swift_code,omitempty" json:"swift_code,omitempty"`
	IBAN          string `bson:"iban,omitempty" json:"iban,omitempty"`
}

// Transaction request domains and types.
const (
	DomainBond = "bond"
	DomainIPO  = "ipo"
	DomainTerm = "term"

	TypeBuy        = "buy"
	TypeSell       = "sell"
	TypeInvest     = "invest"
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"
)

// TransactionRequest is a user-submitted intent, always created Pending.
type TransactionRequest struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Domain    string    `bson:"domain" json:"domain"`
	ItemID    string    `bson:"item_id" json:"item_id"`
	ItemName  string    `bson:"item_name" json:"item_name"`
	Type      string    `bson:"type" json:"type"`
	Quantity  int64     `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Amount    float64   `bson:"amount" json:"amount"`
	Total     float64   `bson:"total" json:"total"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Notification categories for the admin-wide feeds.
const (
	CategoryBond   = "bond"
	CategoryIPO    = "ipo"
	CategoryTerm   = "term"
	CategoryLogin  = "login"
	CategorySignup = "signup"
)

// Notification is a message scoped either to a user or to an admin category.
type Notification struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Category  string    `bson:"category,omitempty" json:"category,omitempty"`
	Message   string    `bson:"message" json:"message"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// DocRecord is the metadata document for an uploaded file; the bytes live in
// object storage under {user_id}/{name}.
type DocRecord struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Name        string    `bson:"name" json:"name"`
	ContentType string    `bson:"content_type" json:"content_type"`
	Size        int64     `bson:"size" json:"size"`
	UploadedAt  time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// Action token modes, matching the portal's action-link contract.
const (
	ModeResetPassword = "resetPassword"
	ModeVerifyEmail   = "verifyEmail"
)

// ActionToken backs the out-of-band action links mailed to users
// (password reset, email verification). One-shot, short TTL.
type ActionToken struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Mode      string     `bson:"mode" json:"mode"`
	Code      string     `bson:"code" json:"code"`
	ExpiresAt time.Time  `bson:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `bson:"used_at,omitempty" json:"used_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

type NewActionToken struct {
	UserID    string
	Mode      string
	Code      string
	ExpiresAt time.Time
}

// RefreshToken mirrors the issued refresh JWTs for rotation and revocation.
type RefreshToken struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Token     []byte     `bson:"token" json:"-"`
	ExpiresAt time.Time  `bson:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

type NewRefreshToken struct {
	UserID    string
	Token     []byte
	ExpiresAt time.Time
}

// PasswordPolicy is the admin-controlled toggle deciding which password rule
// the portal enforces. Re-fetched on every use, never cached.
type PasswordPolicy struct {
	Strong    bool      `bson:"strong" json:"strong"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
