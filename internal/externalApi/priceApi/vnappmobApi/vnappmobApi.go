package vnappmobApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/config"
	"github.com/tuanvm/investfolio/internal/externalApi"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/utils"
)

const (
	code   = "gold"
	source = "SJC"
)

// VnappmobApi fetches the SJC gold sell price.
type VnappmobApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *VnappmobApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.Vnappmob.Url).
		SetAuthToken(cfg.API.Vnappmob.Token)
	return &VnappmobApi{client: client}
}

func (a *VnappmobApi) Code() string {
	return code
}

type goldResponse struct {
	Results []struct {
		Buy1L  float64 `json:"buy_1l"`
		Sell1L float64 `json:"sell_1l"`
	} `json:"results"`
}

func (a *VnappmobApi) GetQuote(ctx context.Context) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/api/v2/gold/sjc"

	slog.Debug("start VnappmobApi.GetQuote request", slog.String("rqID", rqID))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing VnappmobApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	raw := goldResponse{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall VnappmobApi response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	if len(raw.Results) == 0 {
		slog.Warn("empty results in VnappmobApi response", slog.String("rqID", rqID))
		return model.Quote{}, externalApi.ErrNotFound
	}

	slog.Debug("VnappmobApi.GetQuote request complete", slog.String("rqID", rqID))

	return model.Quote{
		Code:   code,
		Price:  decimal.NewFromFloat(raw.Results[0].Sell1L),
		Date:   time.Now().Format("2006-01-02"),
		Source: source,
	}, nil
}
