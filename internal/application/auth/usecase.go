package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/application/usecase"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
	"github.com/jhoicas/roofing-ops/pkg/jwt"
)

// Dashboard screens.
const (
	ScreenBudgets   = "budgets"
	ScreenRequests  = "requests"
	ScreenKitting   = "kitting"
	ScreenBackorder = "backorders"
	ScreenAddon     = "addon"
	ScreenExports   = "exports"
	ScreenReference = "reference"
	ScreenUsers     = "users"
)

var screenRoles = map[string][]string{
	ScreenBudgets:   {entity.RoleAdmin, entity.RoleExec},
	ScreenRequests:  {entity.RoleSuper, entity.RoleAdmin, entity.RoleExec},
	ScreenKitting:   {entity.RoleWarehouse, entity.RoleAdmin, entity.RoleExec},
	ScreenBackorder: {entity.RoleWarehouse, entity.RoleAdmin, entity.RoleExec},
	ScreenAddon:     {entity.RoleWarehouse, entity.RoleAdmin, entity.RoleExec},
	ScreenExports:   {entity.RoleAdmin, entity.RoleExec},
	ScreenReference: {entity.RoleAdmin, entity.RoleExec},
	ScreenUsers:     {entity.RoleAdmin, entity.RoleExec},
}

var screenOrder = []string{
	ScreenBudgets, ScreenRequests, ScreenKitting, ScreenBackorder,
	ScreenAddon, ScreenExports, ScreenReference, ScreenUsers,
}

// RolesFor returns the roles allowed to open a screen.
func RolesFor(screen string) []string {
	return screenRoles[screen]
}

// ScreensFor lists the screens a role can open, in menu order.
func ScreensFor(role string) []string {
	out := make([]string, 0, len(screenOrder))
	for _, s := range screenOrder {
		for _, r := range screenRoles[s] {
			if r == role {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// JWTConfig token generation settings.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase logs users in.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase builds the auth use case.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Login checks username/password and returns a signed token, the user and its screens.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !entity.IsValidRole(user.Role) {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:   token,
		User:    *usecase.ToUserResponse(user),
		Screens: ScreensFor(user.Role),
	}, nil
}
