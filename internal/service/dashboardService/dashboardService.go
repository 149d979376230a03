package dashboardService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/internal/reminder"
	"github.com/KotFed0t/bond_etf_tracker/internal/service"
	"github.com/KotFed0t/bond_etf_tracker/internal/tracker"
	"github.com/KotFed0t/bond_etf_tracker/utils"
	"github.com/shopspring/decimal"
)

type MarketGateway interface {
	GetPrices(ctx context.Context, symbols []string) []model.PriceQuote
	GetHistory(ctx context.Context, symbol string, period model.Period) model.Result[model.PriceHistory]
	GetRates(ctx context.Context) model.MarketRates
}

type NewsGateway interface {
	Sections(ctx context.Context) []model.NewsSection
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.ProgressReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// DashboardService runs one render cycle. It holds no per user state: the
// session comes in and the updated session goes out.
type DashboardService struct {
	cfg             *config.Config
	tracker         *tracker.Tracker
	market          MarketGateway
	news            NewsGateway
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage
	now             func() time.Time
}

// New builds the service; cloudStorage may be nil when uploads are not configured.
func New(
	cfg *config.Config,
	tr *tracker.Tracker,
	market MarketGateway,
	news NewsGateway,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
) *DashboardService {
	return &DashboardService{
		cfg:             cfg,
		tracker:         tr,
		market:          market,
		news:            news,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
		now:             time.Now,
	}
}

func (s *DashboardService) Symbols() []string {
	return s.tracker.Symbols()
}

// InitSession fills in what a brand new or expired session lacks.
func (s *DashboardService) InitSession(sess model.Session) model.Session {
	if sess.Reminder == nil {
		state := reminder.New(s.now())
		sess.Reminder = &state
	}
	if sess.Purchases == nil {
		sess.Purchases = make(map[string]decimal.Decimal)
	}
	return sess
}

func (s *DashboardService) Reminder(sess model.Session) model.ReminderSignal {
	sess = s.InitSession(sess)
	return reminder.Evaluate(*sess.Reminder, s.now(), s.cfg.Reminder.StaleAfterDays)
}

func (s *DashboardService) Acknowledge(ctx context.Context, sess model.Session) model.Session {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("Acknowledge", slog.String("rqID", rqID), slog.String("op", "DashboardService.Acknowledge"))

	sess = s.InitSession(sess)
	state := reminder.Acknowledge(s.now())
	sess.Reminder = &state
	return sess
}

// Dashboard computes everything the main page shows for the session.
func (s *DashboardService) Dashboard(ctx context.Context, sess model.Session) (model.Session, model.Dashboard) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.Dashboard"

	slog.Debug("Dashboard start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Dashboard finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	sess = s.InitSession(sess)

	rows := s.tracker.Summarize(sess.PurchaseRecords())

	return sess, model.Dashboard{
		Reminder: reminder.Evaluate(*sess.Reminder, s.now(), s.cfg.Reminder.StaleAfterDays),
		Quotes:   s.market.GetPrices(ctx, s.tracker.Symbols()),
		Rows:     rows,
		Totals:   tracker.Totals(rows),
	}
}

// SetPurchased records the amount already bought for symbol. Amounts outside
// [0, target] are clamped and reported through clamped.
func (s *DashboardService) SetPurchased(ctx context.Context, sess model.Session, symbol string, amount decimal.Decimal) (
	updated model.Session, row model.ProgressRow, clamped bool, err error,
) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.SetPurchased"

	slog.Debug("SetPurchased start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("amount", amount.String()))

	sess = s.InitSession(sess)

	value, clamped, err := s.tracker.Clamp(symbol, amount)
	if err != nil {
		if errors.Is(err, tracker.ErrUnknownInstrument) {
			return sess, model.ProgressRow{}, false, fmt.Errorf("%w: %s", service.ErrUnknownInstrument, symbol)
		}
		return sess, model.ProgressRow{}, false, err
	}

	if clamped {
		slog.Warn("purchased amount clamped", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("amount", amount.String()), slog.String("clampedTo", value.String()))
	}

	// копируем, чтобы не менять map вызывающего
	purchases := make(map[string]decimal.Decimal, len(sess.Purchases)+1)
	for k, v := range sess.Purchases {
		purchases[k] = v
	}
	purchases[symbol] = value
	sess.Purchases = purchases

	for _, r := range s.tracker.Summarize(sess.PurchaseRecords()) {
		if r.Symbol == symbol {
			row = r
			break
		}
	}

	return sess, row, clamped, nil
}

// ParseAmount reads a user typed amount like "1 500,50", "12,000" or "1,500.50".
// With both separators present the last one is decimal. A lone comma is a
// thousands separator only when it groups digits by three, otherwise decimal.
func ParseAmount(text string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '_', '£', '$':
			return -1
		}
		return r
	}, text)

	invalid := fmt.Errorf("%w: %q", service.ErrInvalidAmount, text)

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		thousandsSep, decimalSep := ",", "."
		if lastComma > lastDot {
			thousandsSep, decimalSep = ".", ","
		}
		intPart, fracPart, _ := strings.Cut(cleaned, decimalSep)
		if strings.Contains(fracPart, thousandsSep) || !groupedByThousands(intPart, thousandsSep) {
			return decimal.Zero, invalid
		}
		cleaned = strings.ReplaceAll(intPart, thousandsSep, "") + "." + fracPart
	case lastComma >= 0:
		if groupedByThousands(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else if strings.Count(cleaned, ",") == 1 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			return decimal.Zero, invalid
		}
	case strings.Count(cleaned, ".") > 1:
		if !groupedByThousands(cleaned, ".") {
			return decimal.Zero, invalid
		}
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, invalid
	}
	return amount, nil
}

// groupedByThousands reports whether s is like "12,000" or "1,000,000" for sep ",".
func groupedByThousands(s, sep string) bool {
	s = strings.TrimLeft(s, "+-")
	groups := strings.Split(s, sep)
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

func (s *DashboardService) History(ctx context.Context, symbol string) (model.Result[model.PriceHistory], error) {
	if _, err := s.tracker.Target(symbol); err != nil {
		return model.Result[model.PriceHistory]{}, fmt.Errorf("%w: %s", service.ErrUnknownInstrument, symbol)
	}
	return s.market.GetHistory(ctx, symbol, model.DefaultLookback), nil
}

func (s *DashboardService) News(ctx context.Context) []model.NewsSection {
	return s.news.Sections(ctx)
}

func (s *DashboardService) Rates(ctx context.Context) model.MarketRates {
	return s.market.GetRates(ctx)
}

// Report renders the progress summary. When the file is over the telegram
// limit it is uploaded to cloud storage and only the link is returned.
func (s *DashboardService) Report(ctx context.Context, sess model.Session) (fileBytes []byte, filename string, downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.Report"

	slog.Debug("Report start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Report finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	_, dashboard := s.Dashboard(ctx, sess)

	report := model.ProgressReport{
		GeneratedAt: s.now(),
		Rows:        dashboard.Rows,
		Totals:      dashboard.Totals,
		Quotes:      dashboard.Quotes,
	}

	fileBytes, ext, err := s.reportGenerator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", "", err
	}

	filename = fmt.Sprintf("bond_etf_progress_%s%s", report.GeneratedAt.Format("2006-01-02_15-04"), ext)

	if len(fileBytes) <= s.cfg.Telegram.FileLimitInBytes {
		return fileBytes, filename, "", nil
	}

	if s.cloudStorage == nil {
		slog.Error("report exceeds file limit and cloud storage is not configured", slog.String("rqID", rqID), slog.String("op", op), slog.Int("size", len(fileBytes)))
		return nil, "", "", service.ErrReportTooLarge
	}

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", "", err
	}

	return nil, filename, downloadLink, nil
}

// WarmCache refreshes everything the dashboard needs so user renders hit the cache.
func (s *DashboardService) WarmCache(ctx context.Context) error {
	ctx = utils.WithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.WarmCache"

	unavailable := 0
	for _, quote := range s.market.GetPrices(ctx, s.tracker.Symbols()) {
		if !quote.Price.Ok() {
			unavailable++
		}
	}

	for _, section := range s.news.Sections(ctx) {
		if !section.Items.Ok() {
			unavailable++
		}
	}

	rates := s.market.GetRates(ctx)
	if !rates.FX.Ok() {
		unavailable++
	}
	if !rates.ShortRate.Ok() {
		unavailable++
	}

	slog.Info("cache warmed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("unavailable", unavailable))

	if unavailable > 0 {
		return fmt.Errorf("%d external lookups unavailable", unavailable)
	}
	return nil
}
