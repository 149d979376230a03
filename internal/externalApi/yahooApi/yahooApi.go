package yahooApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/internal/externalApi"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/internal/model/yahooModel"
	"github.com/KotFed0t/bond_etf_tracker/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const chartUrl = "/v8/finance/chart/{ticker}"

type YahooApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", "Mozilla/5.0")
	return &YahooApi{client: client}
}

// GetHistory returns daily closes of ticker over period, oldest first.
func (a *YahooApi) GetHistory(ctx context.Context, ticker string, period model.Period) (model.PriceHistory, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)
	op := "YahooApi.GetHistory"

	slog.Debug("start YahooApi.GetHistory request", slog.String("rqID", rqId), slog.String("ticker", ticker), slog.String("period", string(period)))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"range":    string(period),
			"interval": "1d",
		}).
		Get(chartUrl)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqId), slog.String("op", op))
		return nil, err
	}

	rawChart := yahooModel.RawChart{}
	err = json.Unmarshal(resp.Body(), &rawChart)
	if err != nil {
		if resp.IsError() {
			slog.Error("YahooApi responded with error status", slog.String("status", resp.Status()), slog.String("rqID", rqId), slog.String("op", op))
			return nil, fmt.Errorf("%w: status %s", externalApi.ErrBadResponse, resp.Status())
		}
		slog.Error("can't unmarshall response into yahooModel.RawChart", slog.String("err", err.Error()), slog.String("rqID", rqId), slog.String("op", op))
		return nil, fmt.Errorf("%w: %s", externalApi.ErrBadResponse, err.Error())
	}

	res, err := a.parseRawChart(rawChart)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("no data in YahooApi chart", slog.String("ticker", ticker), slog.String("rqID", rqId), slog.String("op", op))
		} else {
			slog.Error("can't parse raw chart", slog.String("err", err.Error()), slog.String("rqID", rqId), slog.String("op", op))
		}
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %s", externalApi.ErrBadResponse, resp.Status())
	}

	slog.Debug("YahooApi.GetHistory request complete", slog.String("rqID", rqId), slog.Int("points", len(res)))

	return res, nil
}

// GetLastClose returns the latest close of the current trading day window.
func (a *YahooApi) GetLastClose(ctx context.Context, ticker string) (decimal.Decimal, error) {
	history, err := a.GetHistory(ctx, ticker, model.PeriodDay)
	if err != nil {
		return decimal.Zero, err
	}

	last, ok := history.Last()
	if !ok {
		return decimal.Zero, externalApi.ErrNotFound
	}

	return last.Close, nil
}

func (a *YahooApi) parseRawChart(rawChart yahooModel.RawChart) (model.PriceHistory, error) {
	if chartErr := rawChart.Chart.Error; chartErr != nil {
		if strings.EqualFold(chartErr.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s", externalApi.ErrNotFound, chartErr.Description)
		}
		return nil, fmt.Errorf("%w: %s: %s", externalApi.ErrBadResponse, chartErr.Code, chartErr.Description)
	}

	if len(rawChart.Chart.Result) == 0 {
		return nil, externalApi.ErrNotFound
	}

	result := rawChart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, externalApi.ErrNotFound
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("%w: lengths close != timestamp", externalApi.ErrBadResponse)
	}

	res := make(model.PriceHistory, 0, len(closes))
	for i, c := range closes {
		if c == nil {
			continue
		}
		res = append(res, model.PricePoint{
			Date:  time.Unix(result.Timestamp[i], 0).UTC(),
			Close: decimal.NewFromFloat(*c),
		})
	}

	if len(res) == 0 {
		return nil, externalApi.ErrNotFound
	}

	return res, nil
}
