package categoryService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
	"github.com/tuanvm/investfolio/utils"
)

type Repository interface {
	InsertCategory(ctx context.Context, userID int64, name, description, color string) (categoryID int64, err error)
	GetCategory(ctx context.Context, categoryID, userID int64) (model.Category, error)
	GetCategories(ctx context.Context, userID int64) ([]model.Category, error)
	UpdateCategory(ctx context.Context, categoryID, userID int64, changes model.CategoryChanges) error
	DeleteCategory(ctx context.Context, categoryID, userID int64) error
	InsertHolding(ctx context.Context, categoryID int64) error
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type CategoryService struct {
	repo Repository
}

func New(repo Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategory creates the category together with its zeroed holding row.
func (s *CategoryService) CreateCategory(ctx context.Context, userID int64, name, description, color string) (category model.Category, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CategoryService.CreateCategory"

	slog.Debug("CreateCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("name", name))
	defer func() {
		slog.Debug("CreateCategory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("%w: category name is required", service.ErrValidation)
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		categoryID, err := s.repo.InsertCategory(ctx, userID, name, description, color)
		if err != nil {
			return err
		}

		if err := s.repo.InsertHolding(ctx, categoryID); err != nil {
			return err
		}

		category, err = s.repo.GetCategory(ctx, categoryID, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.Category{}, service.ErrAlreadyExists
		}
		slog.Error("can't create category", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Category{}, err
	}

	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryID, userID int64) (model.Category, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CategoryService.GetCategory"

	slog.Debug("GetCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	defer func() {
		slog.Debug("GetCategory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	}()

	category, err := s.repo.GetCategory(ctx, categoryID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Category{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Category{}, err
	}

	return category, nil
}

func (s *CategoryService) GetCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CategoryService.GetCategories"

	slog.Debug("GetCategories start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetCategories finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	categories, err := s.repo.GetCategories(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetCategories", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return categories, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID, userID int64, changes model.CategoryChanges) (model.Category, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CategoryService.UpdateCategory"

	slog.Debug("UpdateCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	defer func() {
		slog.Debug("UpdateCategory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	}()

	if changes.Name != nil {
		trimmed := strings.TrimSpace(*changes.Name)
		if trimmed == "" {
			return model.Category{}, fmt.Errorf("%w: category name is required", service.ErrValidation)
		}
		changes.Name = &trimmed
	}

	err := s.repo.UpdateCategory(ctx, categoryID, userID, changes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return model.Category{}, service.ErrNotFound
		case errors.Is(err, repository.ErrAlreadyExists):
			return model.Category{}, service.ErrAlreadyExists
		}
		slog.Error("got error from repo.UpdateCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Category{}, err
	}

	return s.GetCategory(ctx, categoryID, userID)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CategoryService.DeleteCategory"

	slog.Debug("DeleteCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	defer func() {
		slog.Debug("DeleteCategory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	}()

	err := s.repo.DeleteCategory(ctx, categoryID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
