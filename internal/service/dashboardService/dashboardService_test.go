package dashboardService

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/internal/service"
	"github.com/KotFed0t/bond_etf_tracker/internal/tracker"
)

type fakeMarket struct {
	historySymbol string
}

func (f *fakeMarket) GetPrices(ctx context.Context, symbols []string) []model.PriceQuote {
	quotes := make([]model.PriceQuote, 0, len(symbols))
	for _, symbol := range symbols {
		q := model.PriceQuote{Symbol: symbol, Ticker: symbol}
		if symbol == "B" {
			q.Price = model.Failed[decimal.Decimal](errors.New("provider down"))
		} else {
			q.Price = model.Success(decimal.RequireFromString("10.50"))
		}
		quotes = append(quotes, q)
	}
	return quotes
}

func (f *fakeMarket) GetHistory(ctx context.Context, symbol string, period model.Period) model.Result[model.PriceHistory] {
	f.historySymbol = symbol
	return model.Success(model.PriceHistory{{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(1)}})
}

func (f *fakeMarket) GetRates(ctx context.Context) model.MarketRates {
	return model.MarketRates{
		FX:        model.Success(model.PriceHistory{}),
		ShortRate: model.Unavailable[model.PriceHistory]("empty"),
	}
}

type fakeNews struct{}

func (fakeNews) Sections(ctx context.Context) []model.NewsSection {
	return []model.NewsSection{
		{Query: model.QueryBankOfEngland, Items: model.Success([]model.NewsItem{{Title: "t", Link: "l"}})},
		{Query: model.QueryFed, Items: model.Success([]model.NewsItem{})},
	}
}

type fakeReportGenerator struct {
	size   int
	report model.ProgressReport
}

func (f *fakeReportGenerator) Generate(ctx context.Context, report model.ProgressReport) ([]byte, string, error) {
	f.report = report
	return make([]byte, f.size), ".xlsx", nil
}

type fakeCloudStorage struct {
	uploaded string
	size     int
}

func (f *fakeCloudStorage) UploadFile(ctx context.Context, reader io.Reader, filename string) (string, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.uploaded = filename
	f.size = len(b)
	return "https://drive.example/" + filename, nil
}

var today = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, gen ReportGenerator, storage CloudStorage) *DashboardService {
	t.Helper()
	tr, err := tracker.New([]model.AllocationTarget{
		{Symbol: "A", Target: decimal.NewFromInt(1000)},
		{Symbol: "B", Target: decimal.NewFromInt(500)},
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Reminder.StaleAfterDays = 3
	cfg.Telegram.FileLimitInBytes = 100

	s := New(cfg, tr, &fakeMarket{}, fakeNews{}, gen, storage)
	s.now = func() time.Time { return today }
	return s
}

func TestDashboard_NewSession(t *testing.T) {
	s := newTestService(t, &fakeReportGenerator{}, nil)

	sess, dashboard := s.Dashboard(context.Background(), model.Session{})

	require.NotNil(t, sess.Reminder)
	assert.Equal(t, 7, dashboard.Reminder.Days)
	assert.Equal(t, model.ReminderStale, dashboard.Reminder.Status)

	require.Len(t, dashboard.Rows, 2)
	assert.True(t, dashboard.Rows[0].Progress.IsZero())
	require.Len(t, dashboard.Quotes, 2)
	assert.Equal(t, "10.50", dashboard.Quotes[0].String())
	assert.Equal(t, "N/A", dashboard.Quotes[1].String(), "a failed quote degrades, the render goes on")
}

func TestDashboard_Scenario(t *testing.T) {
	s := newTestService(t, &fakeReportGenerator{}, nil)
	ctx := context.Background()

	sess, _, _, err := s.SetPurchased(ctx, model.Session{}, "A", decimal.NewFromInt(250))
	require.NoError(t, err)
	sess, _, _, err = s.SetPurchased(ctx, sess, "B", decimal.NewFromInt(500))
	require.NoError(t, err)

	_, dashboard := s.Dashboard(ctx, sess)

	require.Len(t, dashboard.Rows, 2)
	assert.Equal(t, "A", dashboard.Rows[0].Symbol)
	assert.True(t, dashboard.Rows[0].Progress.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "B", dashboard.Rows[1].Symbol)
	assert.True(t, dashboard.Rows[1].Progress.Equal(decimal.NewFromInt(100)))
	assert.True(t, dashboard.Totals.Purchased.Equal(decimal.NewFromInt(750)))
	assert.True(t, dashboard.Totals.Progress.Equal(decimal.NewFromInt(50)))
}

func TestSetPurchased_ClampsAndDoesNotMutateInput(t *testing.T) {
	s := newTestService(t, &fakeReportGenerator{}, nil)
	ctx := context.Background()

	in := s.InitSession(model.Session{})
	out, row, clamped, err := s.SetPurchased(ctx, in, "B", decimal.NewFromInt(900))

	require.NoError(t, err)
	assert.True(t, clamped)
	assert.True(t, row.Purchased.Equal(decimal.NewFromInt(500)))
	assert.True(t, out.Purchases["B"].Equal(decimal.NewFromInt(500)))
	assert.Empty(t, in.Purchases)
}

func TestSetPurchased_UnknownInstrument(t *testing.T) {
	s := newTestService(t, &fakeReportGenerator{}, nil)

	_, _, _, err := s.SetPurchased(context.Background(), model.Session{}, "ZZZ", decimal.NewFromInt(1))

	assert.ErrorIs(t, err, service.ErrUnknownInstrument)
}

func TestAcknowledge(t *testing.T) {
	s := newTestService(t, &fakeReportGenerator{}, nil)
	sess := model.Session{Reminder: &model.ReminderState{LastAcknowledged: today.AddDate(0, 0, -5)}}

	signal := s.Reminder(sess)
	assert.Equal(t, 5, signal.Days)
	assert.Equal(t, model.ReminderStale, signal.Status)

	sess = s.Acknowledge(context.Background(), sess)
	signal = s.Reminder(sess)
	assert.Equal(t, 0, signal.Days)
	assert.Equal(t, model.ReminderFresh, signal.Status)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1500", "1500"},
		{"1 500,50", "1500.5"},
		{"£2_000.25", "2000.25"},
		{"-3", "-3"},
		{"1,5", "1.5"},
		{"1,500", "1500"},
		{"12,000", "12000"},
		{"1,000,000", "1000000"},
		{"1,500.50", "1500.5"},
		{"1.500,50", "1500.5"},
		{"1.000.000", "1000000"},
		{"£12,000", "12000"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s -> %s", tt.in, got)
	}

	for _, in := range []string{"lots", "1,50,0", "1,5.000", "12,00.5", "1.2.3", ""} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, service.ErrInvalidAmount, in)
	}
}

func TestHistory(t *testing.T) {
	s := newTestService(t, &fakeReportGenerator{}, nil)

	res, err := s.History(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, res.Ok())

	_, err = s.History(context.Background(), "ZZZ")
	assert.ErrorIs(t, err, service.ErrUnknownInstrument)
}

func TestReport_SmallFileIsReturned(t *testing.T) {
	gen := &fakeReportGenerator{size: 10}
	s := newTestService(t, gen, nil)

	fileBytes, filename, link, err := s.Report(context.Background(), model.Session{})

	require.NoError(t, err)
	assert.Len(t, fileBytes, 10)
	assert.Equal(t, "bond_etf_progress_2025-03-10_09-00.xlsx", filename)
	assert.Empty(t, link)
	assert.Len(t, gen.report.Rows, 2)
	assert.Equal(t, today, gen.report.GeneratedAt)
}

func TestReport_LargeFileIsUploaded(t *testing.T) {
	storage := &fakeCloudStorage{}
	s := newTestService(t, &fakeReportGenerator{size: 500}, storage)

	fileBytes, filename, link, err := s.Report(context.Background(), model.Session{})

	require.NoError(t, err)
	assert.Nil(t, fileBytes)
	assert.Equal(t, "https://drive.example/"+filename, link)
	assert.Equal(t, 500, storage.size)
}

func TestReport_LargeFileWithoutStorage(t *testing.T) {
	s := newTestService(t, &fakeReportGenerator{size: 500}, nil)

	_, _, _, err := s.Report(context.Background(), model.Session{})

	assert.ErrorIs(t, err, service.ErrReportTooLarge)
}

func TestWarmCache_ReportsUnavailableLookups(t *testing.T) {
	s := newTestService(t, &fakeReportGenerator{}, nil)

	err := s.WarmCache(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 external lookups unavailable")
}
