package app

import (
	"time"

	"github.com/altivest/portal-service/internal/sdk/models"
)

// SignupFormFields is the registration payload. Absent optional fields are
// zero-valued, never "undefined".
type SignupFormFields struct {
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone"`
	Password        string              `json:"password"`
	PasswordConfirm string              `json:"password_confirm"`
	JointAccount    bool                `json:"joint_account"`
	SecondaryHolder *models.JointHolder `json:"secondary_holder,omitempty"`
	CaptchaToken    string              `json:"captcha_token"`
}

type RegisterStartResponse struct {
	ChallengeID    string `json:"challenge_id"`
	State          string `json:"state"`
	ResendCooldown int    `json:"resend_cooldown"`
}

type ResendRequest struct {
	ChallengeID string `json:"challenge_id"`
}

type VerifyCodeRequest struct {
	ChallengeID string   `json:"challenge_id"`
	Entries     []string `json:"entries"`
}

type RegisterVerifyResponse struct {
	State     string `json:"state"`
	RequestID string `json:"request_id"`
	Notified  bool   `json:"notified"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	PasswordConfirm string `json:"password_confirm"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ActionStateResponse struct {
	Mode  string `json:"mode"`
	Stage string `json:"stage"`
}

type ResetPasswordRequest struct {
	OobCode         string `json:"oob_code"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type ProfileUpdateRequest struct {
	FirstName       *string             `json:"first_name,omitempty"`
	LastName        *string             `json:"last_name,omitempty"`
	Phone           *string             `json:"phone,omitempty"`
	Address         *string             `json:"address,omitempty"`
	Country         *string             `json:"country,omitempty"`
	JointAccount    *bool               `json:"joint_account,omitempty"`
	SecondaryHolder *models.JointHolder `json:"secondary_holder,omitempty"`
}

type TransactionRequestInput struct {
	ItemID   string  `json:"item_id"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Quantity int64   `json:"quantity,omitempty"`
}

type TransactionRequestResponse struct {
	Request  models.TransactionRequest `json:"request"`
	Notified bool                      `json:"notified"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

type UserResponse struct {
	ID              string              `json:"id"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone"`
	Address         string              `json:"address,omitempty"`
	Country         string              `json:"country,omitempty"`
	JointAccount    bool                `json:"joint_account"`
	SecondaryHolder *models.JointHolder `json:"secondary_holder,omitempty"`
	KYC             models.KYCAnswers   `json:"kyc"`
	EmailVerified   bool                `json:"email_verified"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type PolicyResponse struct {
	Strong bool `json:"strong"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type LivenessResponse struct {
	Status     string `json:"status"`
	Host       string `json:"host"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}
