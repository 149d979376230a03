package newsApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/internal/externalApi"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/internal/model/newsModel"
	"github.com/KotFed0t/bond_etf_tracker/utils"
	"github.com/go-resty/resty/v2"
)

const everythingUrl = "/v2/everything"

type NewsApi struct {
	client *resty.Client
	apiKey string
}

func New(cfg *config.Config) *NewsApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.NewsApi.Url)
	return &NewsApi{client: client, apiKey: cfg.API.NewsApi.ApiKey}
}

// Search returns at most limit english articles matching query, newest first.
func (a *NewsApi) Search(ctx context.Context, query string, limit int) ([]model.NewsItem, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)
	op := "NewsApi.Search"

	slog.Debug("start NewsApi.Search request", slog.String("rqID", rqId), slog.String("query", query))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"q":        query,
			"language": "en",
			"sortBy":   "publishedAt",
			"pageSize": strconv.Itoa(limit),
			"apiKey":   a.apiKey,
		}).
		Get(everythingUrl)

	if err != nil {
		slog.Error("error while dialing NewsApi", slog.String("err", err.Error()), slog.String("rqID", rqId), slog.String("op", op))
		return nil, err
	}

	raw := newsModel.RawEverything{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into newsModel.RawEverything", slog.String("err", err.Error()), slog.String("rqID", rqId), slog.String("op", op))
		return nil, fmt.Errorf("%w: status %s: %s", externalApi.ErrBadResponse, resp.Status(), err.Error())
	}

	if resp.IsError() || raw.Status != "ok" {
		slog.Error(
			"NewsApi responded with error",
			slog.String("rqID", rqId),
			slog.String("op", op),
			slog.String("status", resp.Status()),
			slog.String("code", raw.Code),
			slog.String("message", raw.Message),
		)
		return nil, fmt.Errorf("%w: %s: %s", externalApi.ErrBadResponse, raw.Code, raw.Message)
	}

	res := a.parseArticles(rqId, raw.Articles, limit)

	slog.Debug("NewsApi.Search request complete", slog.String("rqID", rqId), slog.Int("articles", len(res)))

	return res, nil
}

// parseArticles keeps an article with a broken publishedAt under a zero date,
// so it sorts after every dated one.
func (a *NewsApi) parseArticles(rqId string, articles []newsModel.Article, limit int) []model.NewsItem {
	res := make([]model.NewsItem, 0, len(articles))
	for _, article := range articles {
		if article.Title == "" || article.URL == "" {
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, article.PublishedAt)
		if err != nil {
			slog.Warn(
				"can't parse article publishedAt",
				slog.String("rqID", rqId),
				slog.String("url", article.URL),
				slog.String("publishedAt", article.PublishedAt),
			)
			publishedAt = time.Time{}
		}

		res = append(res, model.NewsItem{
			Title:       article.Title,
			Link:        article.URL,
			Source:      article.Source.Name,
			PublishedAt: publishedAt,
		})
	}

	// провайдер уже сортирует по publishedAt, но не гарантирует это для всех источников
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].PublishedAt.After(res[j].PublishedAt)
	})

	if limit >= 0 && len(res) > limit {
		res = res[:limit]
	}

	return res
}
