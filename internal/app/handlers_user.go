package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/middleware"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/sentry"
)

// HandleGetMe returns the authenticated user's profile.
func (a *App) HandleGetMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	user, err := a.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "GetMe", "get_user", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// HandleUpdateProfile applies a partial profile update; absent fields are
// left untouched.
func (a *App) HandleUpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if req.Phone != nil && !phonePattern.MatchString(*req.Phone) {
		writeError(c, ErrInvalidPhoneNumber, map[string]string{"phone": "must_be_e164"})
		return
	}

	update := docdb.ProfileUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Address:         req.Address,
		Country:         req.Country,
		JointAccount:    req.JointAccount,
		SecondaryHolder: req.SecondaryHolder,
	}

	if err := a.db.UpdateUserProfile(c.Request.Context(), userID, update); err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "UpdateProfile", "update_user", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	user, err := a.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		a.toSentry(c, "UpdateProfile", "get_user", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// HandleGetKYC returns the questionnaire answers saved so far.
func (a *App) HandleGetKYC(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	kyc, err := a.db.GetKYC(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "GetKYC", "get_kyc", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	c.JSON(http.StatusOK, kyc)
}

// HandleUpdateKYCSection persists one wizard section. Each section saves
// independently, so a user can leave mid-wizard and resume later.
func (a *App) HandleUpdateKYCSection(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	section := c.Param("section")
	answers, code := decodeKYCSection(c, section)
	if code != "" {
		writeError(c, code, map[string]string{"section": section})
		return
	}

	if err := a.db.UpdateKYCSection(c.Request.Context(), userID, section, answers); err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "UpdateKYCSection", "update_section", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	c.Status(http.StatusNoContent)
}

// decodeKYCSection binds the body into the struct matching the section name,
// so unknown sections and malformed payloads are rejected before any write.
func decodeKYCSection(c *gin.Context, section string) (any, string) {
	var target any
	switch section {
	case docdb.SectionGoals:
		target = &models.KYCGoals{}
	case docdb.SectionExperience:
		target = &models.KYCExperience{}
	case docdb.SectionRisk:
		target = &models.KYCRisk{}
	case docdb.SectionFinancial:
		target = &models.KYCFinancial{}
	default:
		return nil, ErrInvalidKYCSection
	}

	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return nil, ErrUnmarshal
	}
	return target, ""
}

func toUserResponse(user models.UserProfile) UserResponse {
	return UserResponse{
		ID:              user.ID,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Email:           user.Email,
		Phone:           user.Phone,
		Address:         user.Address,
		Country:         user.Country,
		JointAccount:    user.JointAccount,
		SecondaryHolder: user.SecondaryHolder,
		KYC:             user.KYC,
		EmailVerified:   user.EmailVerified,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}
