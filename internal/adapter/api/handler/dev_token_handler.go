package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/domain/entity"
	"storefront/internal/infrastructure/auth"
	"storefront/internal/usecase"
	"storefront/pkg/errors"
	"storefront/pkg/response"
)

// DevTokenHandler mints HS256 tokens for local testing.
type DevTokenHandler struct {
	issuer      *auth.JWTIssuer
	userUseCase *usecase.UserUseCase
}

func NewDevTokenHandler(issuer *auth.JWTIssuer, userUseCase *usecase.UserUseCase) *DevTokenHandler {
	return &DevTokenHandler{
		issuer:      issuer,
		userUseCase: userUseCase,
	}
}

type devTokenRequest struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role" validate:"omitempty,oneof=user admin"`
}

type devTokenResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// IssueToken upserts the user so role lookups see it, then signs a token for it.
func (h *DevTokenHandler) IssueToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpsertUser(c.Request().Context(), usecase.UpsertUserInput{
		ID:        req.ID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to sign token", err))
	}

	return response.Success(c, devTokenResponse{Token: token, User: user})
}
