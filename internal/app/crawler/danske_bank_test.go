package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

func TestParseDanskeBankDocument(t *testing.T) {
	f, err := os.Open("testdata/danske_bank.html")
	require.NoError(t, err)
	defer f.Close()

	doc, err := htmlquery.Parse(f)
	require.NoError(t, err)

	crawlTime := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	sets, err := parseDanskeBankDocument(doc, crawlTime)
	require.NoError(t, err)
	require.Len(t, sets, 10)

	first := sets[0]
	assert.Equal(t, DanskeBankName, first.Bank)
	assert.Equal(t, model.Term3months, first.Term)
	assert.Equal(t, model.TypeRatioDiscounted, first.Type)
	assert.Equal(t, 0.0424, first.NominalRate)
	assert.Equal(t, 0.0432, first.EffectiveRate)
	assert.Equal(t, &model.RatioDiscountBoundary{MinRatio: 0, MaxRatio: 0.6}, first.RatioDiscountBoundaries)
	assert.False(t, first.UnionDiscount)
	assert.Equal(t, 2024, first.ChangedOn.Year)
	assert.Equal(t, crawlTime, first.LastCrawledAt)

	fiveYearHighRatio := sets[7]
	assert.Equal(t, model.Term5years, fiveYearHighRatio.Term)
	assert.Equal(t, 0.0409, fiveYearHighRatio.NominalRate)
	assert.Equal(t, 0.0417, fiveYearHighRatio.EffectiveRate)
	assert.Equal(t, 0.85, fiveYearHighRatio.RatioDiscountBoundaries.MaxRatio)

	union := sets[8]
	assert.True(t, union.UnionDiscount)
	assert.Equal(t, model.Term1year, union.Term)
	assert.Equal(t, 0.0401, union.NominalRate)
}

func TestParseDanskeBankDocument_ChangedLayout(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<table><tbody><tr><td>nothing here</td></tr></tbody></table>`))
	require.NoError(t, err)

	_, err = parseDanskeBankDocument(doc, time.Now())
	assert.ErrorContains(t, err, "expected 2 tables")
}

func TestParseInterestRatesFromCellText(t *testing.T) {
	tests := []struct {
		cell               string
		nominal, effective float64
	}{
		{cell: "4,24 % (4,32 %)", nominal: 0.0424, effective: 0.0432},
		{cell: " 3,5%*  ( 3,61% ) ", nominal: 0.035, effective: 0.0361},
		{cell: "4,1 %", nominal: 0.041, effective: 0.041},
	}
	for _, tt := range tests {
		nominal, effective, err := parseInterestRatesFromCellText(tt.cell)
		require.NoError(t, err, tt.cell)
		assert.Equal(t, tt.nominal, nominal, tt.cell)
		assert.Equal(t, tt.effective, effective, tt.cell)
	}

	_, _, err := parseInterestRatesFromCellText("n/a")
	assert.Error(t, err)
}

func TestParseTerm(t *testing.T) {
	term, err := parseTerm("10 år")
	require.NoError(t, err)
	assert.Equal(t, model.Term10years, term)

	// "å" as "a" + combining ring above
	term, err = parseTerm(getAllTextFromNode(mustParse(t, "<p>3 ma\u030an</p>")))
	require.NoError(t, err)
	assert.Equal(t, model.Term3months, term)

	_, err = parseTerm("11 år")
	assert.Error(t, err)
}

func TestParseDiscountBoundaries(t *testing.T) {
	got, err := parseDiscountBoundaries([]string{"60 %", "75 - 79 %"})
	require.NoError(t, err)
	assert.Equal(t, []model.RatioDiscountBoundary{{MinRatio: 0, MaxRatio: 0.6}, {MinRatio: 0.75, MaxRatio: 0.8}}, got)

	_, err = parseDiscountBoundaries([]string{"90 %"})
	assert.Error(t, err)
}

func TestDanskeBankCrawler_Crawl(t *testing.T) {
	page, err := os.ReadFile("testdata/danske_bank.html")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	c := NewDanskeBankCrawler(zap.NewNop())
	c.url = srv.URL

	sets := make(chan model.InterestSet, 20)
	require.NoError(t, c.Crawl(context.Background(), sets))
	close(sets)

	var n int
	for set := range sets {
		assert.Equal(t, DanskeBankName, set.Bank)
		n++
	}
	assert.Equal(t, 10, n)
}

func TestDanskeBankCrawler_CrawlBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewDanskeBankCrawler(zap.NewNop())
	c.url = srv.URL

	err := c.Crawl(context.Background(), make(chan model.InterestSet))
	assert.ErrorContains(t, err, "503")
}

func mustParse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := htmlquery.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return htmlquery.FindOne(doc, "//p")
}
