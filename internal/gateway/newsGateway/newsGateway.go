package newsGateway

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/internal/cache"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/utils"
)

type NewsApi interface {
	Search(ctx context.Context, query string, limit int) ([]model.NewsItem, error)
}

type NewsGateway struct {
	api   NewsApi
	cache *cache.Cache
	cfg   *config.Config
}

func New(cfg *config.Config, api NewsApi, c *cache.Cache) *NewsGateway {
	return &NewsGateway{api: api, cache: c, cfg: cfg}
}

// FetchNews never fails: on any provider problem the result carries the reason
// and an empty list.
func (g *NewsGateway) FetchNews(ctx context.Context, query string) model.Result[[]model.NewsItem] {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "NewsGateway.FetchNews"

	items, err := cache.Call(ctx, g.cache, cache.Key("news", query), g.cfg.Cache.NewsTTL, func(ctx context.Context) ([]model.NewsItem, error) {
		return g.api.Search(ctx, query, model.MaxNewsItems)
	})
	if err != nil {
		slog.Warn("news are unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.String("err", err.Error()))
		res := model.Failed[[]model.NewsItem](err)
		res.Value = []model.NewsItem{}
		return res
	}

	if len(items) > model.MaxNewsItems {
		items = items[:model.MaxNewsItems]
	}

	return model.Success(items)
}

// Sections fetches every monitored query in display order.
func (g *NewsGateway) Sections(ctx context.Context) []model.NewsSection {
	sections := make([]model.NewsSection, 0, len(model.NewsQueries))
	for _, query := range model.NewsQueries {
		sections = append(sections, model.NewsSection{Query: query, Items: g.FetchNews(ctx, query)})
	}
	return sections
}
