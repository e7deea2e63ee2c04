package authService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tuanvm/investfolio/config"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
	"github.com/tuanvm/investfolio/utils"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	InsertUser(ctx context.Context, username, passwordHash, displayName, email string) (userID int64, err error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByID(ctx context.Context, userID int64) (model.User, error)
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error
}

type AuthService struct {
	cfg  *config.Config
	repo Repository
}

func New(cfg *config.Config, repo Repository) *AuthService {
	return &AuthService{cfg: cfg, repo: repo}
}

func (s *AuthService) Register(ctx context.Context, username, password, displayName, email string) (model.AuthResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.Register"

	slog.Debug("Register start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("Register finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	if username == "" || len(password) < 6 {
		return model.AuthResult{}, fmt.Errorf("%w: username required, password must be at least 6 characters", service.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.AuthResult{}, err
	}

	userID, err := s.repo.InsertUser(ctx, username, string(hash), displayName, email)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.AuthResult{}, service.ErrAlreadyExists
		}
		slog.Error("got error from repo.InsertUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.AuthResult{}, err
	}

	user := model.User{UserID: userID, Username: username, DisplayName: displayName, Email: email}

	token, err := s.issueToken(user)
	if err != nil {
		slog.Error("can't issue token", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.AuthResult{}, err
	}

	return model.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (model.AuthResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.Login"

	slog.Debug("Login start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("Login finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.AuthResult{}, service.ErrInvalidCredentials
		}
		slog.Error("got error from repo.GetUserByUsername", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.AuthResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.AuthResult{}, service.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		slog.Error("can't issue token", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.AuthResult{}, err
	}

	return model.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (model.User, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.GetProfile"

	slog.Debug("GetProfile start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetProfile finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetUserByID", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.User{}, err
	}

	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.ChangePassword"

	slog.Debug("ChangePassword start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("ChangePassword finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if len(newPassword) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters", service.ErrValidation)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.GetUserByID", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return service.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.repo.UpdateUserPassword(ctx, userID, string(hash))
	if err != nil {
		slog.Error("got error from repo.UpdateUserPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// ParseToken validates a bearer token and returns the user ID it carries.
func (s *AuthService) ParseToken(tokenString string) (int64, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, service.ErrInvalidCredentials
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, service.ErrInvalidCredentials
	}

	return int64(sub), nil
}

func (s *AuthService) issueToken(user model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":          user.UserID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"iat":          now.Unix(),
		"exp":          now.Add(s.cfg.JWT.Expiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.cfg.JWT.Secret))
}
