package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
	"github.com/tuanvm/investfolio/utils"
	"golang.org/x/sync/errgroup"
)

type Repository interface {
	GetCategory(ctx context.Context, categoryID, userID int64) (model.Category, error)
	GetPositions(ctx context.Context, userID int64) ([]model.PortfolioPosition, error)
	GetHoldingByCategory(ctx context.Context, categoryID int64) (model.Holding, error)
	UpdateHoldingCurrentValue(ctx context.Context, categoryID int64, value decimal.Decimal) error
	UpsertSnapshot(ctx context.Context, snapshot model.Snapshot) (model.Snapshot, error)
	GetHistory(ctx context.Context, userID int64, from model.Date) ([]model.HistoryPoint, error)
	GetRecentTransactions(ctx context.Context, userID int64, days int) ([]model.Transaction, error)
	GetTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error)
	GetUserIDs(ctx context.Context) ([]int64, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, overview model.PortfolioOverview, transactions []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

const exportTransactionsLimit = 10000

type PortfolioService struct {
	repo            Repository
	reportGenerator ReportGenerator
}

func New(repo Repository, reportGenerator ReportGenerator) *PortfolioService {
	return &PortfolioService{repo: repo, reportGenerator: reportGenerator}
}

func (s *PortfolioService) GetOverview(ctx context.Context, userID int64) (overview model.PortfolioOverview, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetOverview"

	slog.Debug("GetOverview start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetOverview finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	positions, err := s.repo.GetPositions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetPositions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioOverview{}, err
	}

	overview.Positions = positions
	overview.CategoriesCount = len(positions)
	for _, position := range positions {
		overview.TotalInvested = overview.TotalInvested.Add(position.TotalInvested)
		overview.TotalValue = overview.TotalValue.Add(position.CurrentValue)
	}

	overview.TotalPnl = overview.TotalValue.Sub(overview.TotalInvested)
	if overview.TotalInvested.IsPositive() {
		overview.TotalPnlPercentage = overview.TotalPnl.Div(overview.TotalInvested).Mul(decimal.NewFromInt(100))
	}

	return overview, nil
}

// GetDistribution reports each category's share of the portfolio value. All
// shares are zero when the total is zero.
func (s *PortfolioService) GetDistribution(ctx context.Context, userID int64) ([]model.DistributionSlice, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetDistribution"

	slog.Debug("GetDistribution start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetDistribution finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	positions, err := s.repo.GetPositions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetPositions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	total := decimal.Zero
	for _, position := range positions {
		total = total.Add(position.CurrentValue)
	}

	slices := make([]model.DistributionSlice, 0, len(positions))
	for _, position := range positions {
		percentage := decimal.Zero
		if total.IsPositive() {
			percentage = position.CurrentValue.Div(total).Mul(decimal.NewFromInt(100))
		}
		slices = append(slices, model.DistributionSlice{
			CategoryID:   position.CategoryID,
			CategoryName: position.CategoryName,
			Color:        position.Color,
			Value:        position.CurrentValue,
			Percentage:   percentage,
		})
	}

	return slices, nil
}

func (s *PortfolioService) GetPnlByCategory(ctx context.Context, userID int64) ([]model.PortfolioPosition, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPnlByCategory"

	slog.Debug("GetPnlByCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetPnlByCategory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	positions, err := s.repo.GetPositions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetPositions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return positions, nil
}

// GetPnlLast7Days returns daily aggregated snapshot pnl for the trailing 7
// days, today inclusive.
func (s *PortfolioService) GetPnlLast7Days(ctx context.Context, userID int64) ([]model.HistoryPoint, error) {
	return s.GetHistory(ctx, userID, 7)
}

func (s *PortfolioService) GetHistory(ctx context.Context, userID int64, days int) ([]model.HistoryPoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetHistory"

	slog.Debug("GetHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Int("days", days))
	defer func() {
		slog.Debug("GetHistory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if days <= 0 {
		days = 30
	}

	points, err := s.repo.GetHistory(ctx, userID, model.Today().AddDays(-(days - 1)))
	if err != nil {
		slog.Error("got error from repo.GetHistory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return points, nil
}

func (s *PortfolioService) GetDashboard(ctx context.Context, userID int64) (dashboard model.Dashboard, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetDashboard"

	slog.Debug("GetDashboard start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetDashboard finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		overview, err := s.GetOverview(gCtx, userID)
		if err != nil {
			return err
		}
		dashboard.Overview = overview
		dashboard.Pnl = overview.Positions
		return nil
	})

	g.Go(func() error {
		distribution, err := s.GetDistribution(gCtx, userID)
		if err != nil {
			return err
		}
		dashboard.Distribution = distribution
		return nil
	})

	g.Go(func() error {
		points, err := s.GetPnlLast7Days(gCtx, userID)
		if err != nil {
			return err
		}
		dashboard.PnlLast7Days = points
		return nil
	})

	g.Go(func() error {
		points, err := s.GetHistory(gCtx, userID, 30)
		if err != nil {
			return err
		}
		dashboard.History = points
		return nil
	})

	g.Go(func() error {
		transactions, err := s.repo.GetRecentTransactions(gCtx, userID, 7)
		if err != nil {
			return err
		}
		dashboard.RecentTransactions = transactions
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("can't assemble dashboard", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Dashboard{}, err
	}

	return dashboard, nil
}

// UpdateCurrentValue writes the holding's valuation. Ledger-derived columns
// stay untouched.
func (s *PortfolioService) UpdateCurrentValue(ctx context.Context, userID, categoryID int64, value decimal.Decimal) (model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdateCurrentValue"

	slog.Debug("UpdateCurrentValue start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	defer func() {
		slog.Debug("UpdateCurrentValue finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	}()

	if value.IsNegative() {
		return model.Holding{}, fmt.Errorf("%w: current value must not be negative", service.ErrValidation)
	}

	_, err := s.repo.GetCategory(ctx, categoryID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Holding{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	err = s.repo.UpdateHoldingCurrentValue(ctx, categoryID, value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Holding{}, service.ErrNotFound
		}
		slog.Error("got error from repo.UpdateHoldingCurrentValue", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	holding, err := s.repo.GetHoldingByCategory(ctx, categoryID)
	if err != nil {
		slog.Error("got error from repo.GetHoldingByCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	return holding, nil
}

// CreateDailySnapshot records today's valuation for every holding of the user.
// Rerunning on the same day overwrites the day's rows.
func (s *PortfolioService) CreateDailySnapshot(ctx context.Context, userID int64) ([]model.Snapshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateDailySnapshot"

	slog.Debug("CreateDailySnapshot start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("CreateDailySnapshot finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	positions, err := s.repo.GetPositions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetPositions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	today := model.Today()
	snapshots := make([]model.Snapshot, 0, len(positions))
	for _, position := range positions {
		pnl := position.CurrentValue.Sub(position.TotalInvested)
		pnlPercentage := decimal.Zero
		if position.TotalInvested.IsPositive() {
			pnlPercentage = pnl.Div(position.TotalInvested).Mul(decimal.NewFromInt(100))
		}

		snapshot, err := s.repo.UpsertSnapshot(ctx, model.Snapshot{
			CategoryID:    position.CategoryID,
			SnapshotDate:  today,
			TotalValue:    position.CurrentValue,
			TotalInvested: position.TotalInvested,
			Pnl:           pnl,
			PnlPercentage: pnlPercentage,
		})
		if err != nil {
			slog.Error("got error from repo.UpsertSnapshot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// CreateDailySnapshots runs the snapshot recorder for every user; used by the
// nightly job.
func (s *PortfolioService) CreateDailySnapshots(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateDailySnapshots"

	slog.Debug("CreateDailySnapshots start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("CreateDailySnapshots finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	userIDs, err := s.repo.GetUserIDs(ctx)
	if err != nil {
		slog.Error("got error from repo.GetUserIDs", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	var failed int
	for _, userID := range userIDs {
		if _, err := s.CreateDailySnapshot(ctx, userID); err != nil {
			slog.Error("snapshot failed for user", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("err", err.Error()))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("daily snapshots failed for %d of %d users", failed, len(userIDs))
	}

	return nil
}

func (s *PortfolioService) ExportReport(ctx context.Context, userID int64) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("ExportReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	overview, err := s.GetOverview(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	transactions, err := s.repo.GetTransactions(ctx, userID, exportTransactionsLimit)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return s.reportGenerator.Generate(ctx, overview, transactions)
}
