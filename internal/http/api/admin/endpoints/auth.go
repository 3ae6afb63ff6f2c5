package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/db"
	"github.com/Glowcast-Media/glowcast/internal/http/api"
	"github.com/Glowcast-Media/glowcast/internal/http/api/admin/packets"
	"github.com/Glowcast-Media/glowcast/internal/http/middleware"
	"github.com/Glowcast-Media/glowcast/internal/model"
)

type AccountManager struct {
	store     db.Store
	jwtSecret string
}

func NewAccountManager(jwtSecret string, store db.Store) *AccountManager {
	return &AccountManager{store: store, jwtSecret: jwtSecret}
}

// AuthPublicModule carries the endpoints reachable without a token.
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	mgr := NewAccountManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/auth/signup", mgr.userSignup)
		c.POST("/auth/login", mgr.userLogin)
	})
}

// AuthSessionModule carries the endpoints that require a valid session.
func AuthSessionModule(jwtSecret string, store db.Store) api.Module {
	mgr := NewAccountManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.AuthGET("/auth/current_profile", mgr.getCurrentProfile)
	})
}

// POST /api/admin/auth/signup
func (a *AccountManager) userSignup(ctx *gin.Context) (any, *api.APIError) {
	var request packets.SignupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if existing, _ := a.store.GetUserByEmail(request.Email); existing != nil {
		log.Warn().Str("email", request.Email).Msg("signup email already registered")
		return nil, &api.APIError{Code: http.StatusConflict, Message: "email already registered"}
	}

	hashed, err := middleware.HashPassword(request.Password)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not hash password"}
	}

	userID, err := a.store.CreateUser(request.Email, hashed, request.Name)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create user"}
	}

	token, err := middleware.GenerateJWT(userID, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return gin.H{"token": token}, nil
}

// POST /api/admin/auth/login
func (a *AccountManager) userLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	foundUser, err := a.store.GetUserByEmail(request.Email)
	if err != nil || foundUser == nil || !middleware.CheckPassword(foundUser.HashedPassword, request.Password) {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	token, err := middleware.GenerateJWT(foundUser.ID, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return gin.H{"token": token}, nil
}

// GET /api/admin/auth/current_profile
func (a *AccountManager) getCurrentProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return packets.ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}, nil
}
