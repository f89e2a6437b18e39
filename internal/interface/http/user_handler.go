package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/pkg/response"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

// UserService is the part of application.Service the handlers drive.
type UserService interface {
	Create(ctx context.Context, in entity.CreateUserInput) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type UserHandler struct {
	Svc    UserService
	Errors *response.Translator
	Logger logrus.FieldLogger
}

func NewUserHandler(svc UserService, errs *response.Translator, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Svc: svc, Errors: errs, Logger: logger}
}

// Field rules live in validation.CreateUser; binding only rejects malformed JSON.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/users.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Errors.Abort(c, apperror.Validation(validation.ToDetails(err)))
		return
	}

	u, err := h.Svc.Create(c.Request.Context(), entity.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// GetByID handles GET /api/users/get-user-by-id/:id.
func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.Svc.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, u))
}
