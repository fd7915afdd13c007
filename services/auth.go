package services

import (
	"fmt"
	"time"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns registration, login and the request auth middleware.
// Token issuance itself lives in JWTService.
type AuthService struct {
	context.DefaultService

	sqlSvc *PostgresService
	jwtSvc *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if _, err := svc.sqlSvc.GetUserByEmailOrUsername(req.Email); err == nil {
		return nil, shared.NewBadRequestError(fmt.Errorf("email taken"), "Email is already taken")
	}
	if _, err := svc.sqlSvc.GetUserByEmailOrUsername(req.Username); err == nil {
		return nil, shared.NewBadRequestError(fmt.Errorf("username taken"), "Username is already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to process password")
	}

	id, _ := uuid.NewV7()
	user := &model.User{
		ID:         id.String(),
		Email:      req.Email,
		Username:   req.Username,
		Password:   string(hashed),
		Role:       req.Role,
		GradeLevel: req.GradeLevel,
		// Students join immediately; teacher accounts wait for an admin.
		IsApproved: req.Role == shared.RoleStudent,
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if _, err := svc.sqlSvc.CreateUser(user); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return &dto.RegisterResponse{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		IsApproved: user.IsApproved,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.sqlSvc.GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
	}

	if !user.IsActive {
		return nil, shared.NewForbiddenError(fmt.Errorf("account deactivated"), "Account is deactivated")
	}
	if !user.IsApproved {
		return nil, shared.NewForbiddenError(fmt.Errorf("account pending approval"), "Account is awaiting admin approval")
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role, user.Username)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	user.LastLogin = time.Now()
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	return &dto.LoginResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		LastLogin:   user.LastLogin,
	}, nil
}

func (svc *AuthService) GetUserProfile(userID string) (*dto.UserProfileResponse, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, err
	}
	return mapUserToProfile(user), nil
}

func (svc *AuthService) AdminListUsers(page, limit int, search string) (*dto.AdminUserListResponse, error) {
	users, total, err := svc.sqlSvc.ListUsers(page, limit, search)
	if err != nil {
		return nil, err
	}

	profiles := make([]dto.UserProfileResponse, len(users))
	for i := range users {
		profiles[i] = *mapUserToProfile(&users[i])
	}

	return &dto.AdminUserListResponse{
		Users: profiles,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (svc *AuthService) AdminApproveUser(userID string) (*dto.UserProfileResponse, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, err
	}

	user.IsApproved = true
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return nil, err
	}

	log.WithField("user_id", userID).Info("User approved")
	return mapUserToProfile(user), nil
}

func mapUserToProfile(user *model.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		UserID:     user.ID,
		Email:      user.Email,
		Username:   user.Username,
		Role:       user.Role,
		GradeLevel: user.GradeLevel,
		IsApproved: user.IsApproved,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}
}

// RequiredAuth validates the bearer token and stashes the caller
// identity in request locals.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		claims, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if claims.UserID == "" {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, claims.UserID)
		c.Locals(shared.UserRole, claims.Role)
		c.Locals(shared.Username, claims.Username)
		return c.Next()
	}
}

// RequireRole gates a route to the listed roles. RequiredAuth must run
// first on the same chain.
func (svc *AuthService) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(shared.UserRole).(string)
		if !shared.IsKnownRole(role) {
			return shared.ResponseForbidden(c)
		}

		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}

		return shared.ResponseForbidden(c)
	}
}
