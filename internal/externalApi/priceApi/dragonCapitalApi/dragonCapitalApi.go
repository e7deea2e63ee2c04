package dragonCapitalApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/config"
	"github.com/tuanvm/investfolio/internal/externalApi"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/utils"
)

const (
	code      = "dcds"
	source    = "Dragon Capital"
	tradeCode = "DCDS"
)

// DragonCapitalApi fetches the DCDS fund NAV.
type DragonCapitalApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *DragonCapitalApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.DragonCapital.Url)
	return &DragonCapitalApi{client: client}
}

func (a *DragonCapitalApi) Code() string {
	return code
}

type navResponse struct {
	Data []struct {
		NavCcq    string `json:"nav_ccq"`
		TradeDate string `json:"trade_date"`
	} `json:"data"`
}

func (a *DragonCapitalApi) GetQuote(ctx context.Context) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/fundfact/navs/get_nav_ccq.php"
	params := map[string]string{
		"trade_code": tradeCode,
	}

	slog.Debug("start DragonCapitalApi.GetQuote request", slog.String("rqID", rqID))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing DragonCapitalApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	raw := navResponse{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall DragonCapitalApi response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	if len(raw.Data) == 0 {
		slog.Warn("empty nav list in DragonCapitalApi response", slog.String("rqID", rqID))
		return model.Quote{}, externalApi.ErrNotFound
	}

	latest := raw.Data[0]
	price, err := decimal.NewFromString(latest.NavCcq)
	if err != nil {
		slog.Error("can't parse nav_ccq", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("nav_ccq", latest.NavCcq))
		return model.Quote{}, fmt.Errorf("%w: nav_ccq %q", externalApi.ErrBadResponse, latest.NavCcq)
	}

	slog.Debug("DragonCapitalApi.GetQuote request complete", slog.String("rqID", rqID))

	return model.Quote{
		Code:   code,
		Price:  price,
		Date:   latest.TradeDate,
		Source: source,
	}, nil
}
