package vietcombankApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/config"
	"github.com/tuanvm/investfolio/internal/externalApi"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/utils"
)

const (
	code     = "usd"
	source   = "Vietcombank"
	currency = "USD"
)

// VietcombankApi fetches the USD transfer exchange rate.
type VietcombankApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *VietcombankApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.Vietcombank.Url)
	return &VietcombankApi{client: client}
}

func (a *VietcombankApi) Code() string {
	return code
}

type ratesResponse struct {
	Date string `json:"Date"`
	Data []struct {
		CurrencyCode string `json:"currencyCode"`
		Transfer     string `json:"transfer"`
	} `json:"Data"`
}

func (a *VietcombankApi) GetQuote(ctx context.Context) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/api/exchangerates"
	params := map[string]string{
		"date": time.Now().Format("2006-01-02"),
	}

	slog.Debug("start VietcombankApi.GetQuote request", slog.String("rqID", rqID))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing VietcombankApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	raw := ratesResponse{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall VietcombankApi response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	for _, rate := range raw.Data {
		if rate.CurrencyCode != currency {
			continue
		}

		// transfer rate comes formatted with thousands separators
		price, err := decimal.NewFromString(strings.ReplaceAll(rate.Transfer, ",", ""))
		if err != nil {
			slog.Error("can't parse transfer rate", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("transfer", rate.Transfer))
			return model.Quote{}, fmt.Errorf("%w: transfer %q", externalApi.ErrBadResponse, rate.Transfer)
		}

		slog.Debug("VietcombankApi.GetQuote request complete", slog.String("rqID", rqID))

		return model.Quote{
			Code:   code,
			Price:  price,
			Date:   raw.Date,
			Source: source,
		}, nil
	}

	slog.Warn("USD not found in VietcombankApi response", slog.String("rqID", rqID))

	return model.Quote{}, externalApi.ErrNotFound
}
