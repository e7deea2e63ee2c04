package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/utils"
)

func (r *Postgres) GetSetting(ctx context.Context, userID int64, key string) (value json.RawMessage, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetSetting"
	query := `
		SELECT setting_value
		FROM user_settings
		WHERE user_id = $1
		AND setting_key = $2
	`

	slog.Debug("GetSetting start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetSetting failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetSetting completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	var raw []byte
	err = r.txOrDb(ctx).QueryRowContext(ctx, query, userID, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return json.RawMessage(raw), nil
}

func (r *Postgres) SaveSetting(ctx context.Context, userID int64, key string, value json.RawMessage) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.SaveSetting"
	query := `
		INSERT INTO user_settings(user_id, setting_key, setting_value)
		VALUES($1, $2, $3)
		ON CONFLICT (user_id, setting_key) DO UPDATE
		SET setting_value = EXCLUDED.setting_value, updated_at = now()
	`

	slog.Debug("SaveSetting start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("SaveSetting failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("SaveSetting completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, userID, key, []byte(value))
	if err != nil {
		return err
	}

	return nil
}
