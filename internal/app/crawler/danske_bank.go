package crawler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/antchfx/htmlquery"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const (
	danskeBankUrl             = "https://danskebank.se/privat/produkter/bolan/relaterat/aktuella-bolanerantor"
	DanskeBankName model.Bank = "Danske Bank"
)

var (
	_ SiteCrawler = &DanskeBankCrawler{}

	whitespace = regexp.MustCompile(`\s+`)
	hundred    = decimal.NewFromInt(100)
)

type DanskeBankCrawler struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewDanskeBankCrawler(logger *zap.Logger) *DanskeBankCrawler {
	return &DanskeBankCrawler{
		url:    danskeBankUrl,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

func (d *DanskeBankCrawler) Name() model.Bank {
	return DanskeBankName
}

// Crawl fetches the current ratio-discounted rates, regular and union-subsidized, and
// sends one InterestSet per term and loan-to-value bracket.
func (d *DanskeBankCrawler) Crawl(ctx context.Context, channel chan<- model.InterestSet) error {
	crawlTime := time.Now()
	doc, err := d.load(ctx)
	if err != nil {
		return fmt.Errorf("failed reading Danske Bank website: %w", err)
	}
	d.logger.Debug("parsed root nodes")

	sets, err := parseDanskeBankDocument(doc, crawlTime)
	if err != nil {
		return err
	}
	d.logger.Debug("parsed interestSets", zap.Int("rows", len(sets)))

	for _, set := range sets {
		select {
		case channel <- set:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (d *DanskeBankCrawler) load(ctx context.Context) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return htmlquery.Parse(resp.Body)
}

func parseDanskeBankDocument(doc *html.Node, crawlTime time.Time) ([]model.InterestSet, error) {
	// this is the shaky part. If they change anything on their website structure, this is most likely gonna fail here
	nodes, err := htmlquery.QueryAll(doc, "//table/tbody/tr/td/b[contains(text(), 'Belåningsgrad')]")
	if err != nil {
		return nil, fmt.Errorf("failed to xpath table with interest rates: %w", err)
	}
	if len(nodes) != 2 { // regular and union-subsidized
		return nil, fmt.Errorf("expected 2 tables with interest rates, found %d", len(nodes))
	}

	regular, err := parseTable(nodes[0].Parent.Parent.Parent.Parent, crawlTime, false)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular rate table: %w", err)
	}
	union, err := parseTable(nodes[1].Parent.Parent.Parent.Parent, crawlTime, true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse union rate table: %w", err)
	}

	return append(regular, union...), nil
}

func parseTable(table *html.Node, crawlTime time.Time, unionDiscount bool) ([]model.InterestSet, error) {
	rowNodes, err := htmlquery.QueryAll(table, "//tr")
	if err != nil {
		return nil, fmt.Errorf("failed to xpath rows: %w", err)
	}

	rows, err := parseRows(rowNodes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}

	if len(rows) == 0 || !strings.Contains(rows[0].title, "Belåningsgrad") {
		return nil, fmt.Errorf("source table structure seems to have changed... fix parser?")
	}

	discountBoundaries, err := parseDiscountBoundaries(rows[0].fields)
	if err != nil {
		return nil, fmt.Errorf("failed to extract categories from first rowStruct: %w", err)
	}

	sets := make([]model.InterestSet, 0, (len(rows)-1)*len(discountBoundaries))
	for _, row := range rows[1:] {
		term, err := parseTerm(row.title)
		if err != nil {
			return nil, fmt.Errorf("failed to parse term for row %v: %w", row, err)
		}
		if len(row.fields) != len(discountBoundaries) {
			return nil, fmt.Errorf("row %v has %d rates for %d brackets", row, len(row.fields), len(discountBoundaries))
		}
		for i, cell := range row.fields {
			nominalRate, effectiveRate, err := parseInterestRatesFromCellText(cell)
			if err != nil {
				return nil, fmt.Errorf("failed to parse interest rates for row %v: %w", row, err)
			}
			boundary := discountBoundaries[i]
			sets = append(sets, model.InterestSet{
				Bank:                    DanskeBankName,
				NominalRate:             nominalRate,
				EffectiveRate:           effectiveRate,
				Term:                    term,
				Type:                    model.TypeRatioDiscounted,
				RatioDiscountBoundaries: &boundary,
				UnionDiscount:           unionDiscount,
				ChangedOn:               civil.DateOf(crawlTime),
				LastCrawledAt:           crawlTime,
			})
		}
	}

	return sets, nil
}

// parseInterestRatesFromCellText reads cells like "4,24 % (4,32 %)" - nominal rate
// followed by the effective rate in parentheses - and returns fractional rates.
func parseInterestRatesFromCellText(cell string) (nominal float64, effective float64, err error) {
	sanitized := strings.NewReplacer("%", " ", "*", " ", "(", " ", ")", " ").Replace(cell)
	sanitized = strings.TrimSpace(whitespace.ReplaceAllString(sanitized, " "))

	parts := strings.Split(sanitized, " ")
	nominal, err = parsePercent(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse nominal rate in cell '%s' (sanitized: '%s'): %w", cell, sanitized, err)
	}
	if len(parts) < 2 {
		return nominal, nominal, nil
	}

	effective, err = parsePercent(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse effective rate in cell '%s' (sanitized: '%s'): %w", cell, sanitized, err)
	}
	return nominal, effective, nil
}

func parsePercent(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return 0, err
	}
	return d.Div(hundred).InexactFloat64(), nil
}

func parseDiscountBoundaries(fields []string) ([]model.RatioDiscountBoundary, error) {
	out := make([]model.RatioDiscountBoundary, 0, len(fields))
	for _, cat := range fields {
		cleanedCat := whitespace.ReplaceAllString(cat, "") // remove spaces
		switch cleanedCat {
		case "60%":
			out = append(out, model.RatioDiscountBoundary{MinRatio: 0, MaxRatio: 0.6})
		case "61-74%":
			out = append(out, model.RatioDiscountBoundary{MinRatio: 0.6, MaxRatio: 0.75})
		case "75-79%":
			out = append(out, model.RatioDiscountBoundary{MinRatio: 0.75, MaxRatio: 0.8})
		case "80-85%":
			out = append(out, model.RatioDiscountBoundary{MinRatio: 0.8, MaxRatio: 0.85})
		default:
			return nil, fmt.Errorf("failed to parse Discount Boundary from string '%s' (sanitized: '%s')", cat, cleanedCat)
		}
	}
	return out, nil
}

var danskeBankTerms = map[string]model.Term{
	"3mån": model.Term3months,
	"1år":  model.Term1year,
	"2år":  model.Term2years,
	"3år":  model.Term3years,
	"4år":  model.Term4years,
	"5år":  model.Term5years,
	"6år":  model.Term6years,
	"7år":  model.Term7years,
	"8år":  model.Term8years,
	"9år":  model.Term9years,
	"10år": model.Term10years,
}

func parseTerm(title string) (model.Term, error) {
	cleanedTitle := whitespace.ReplaceAllString(title, "") // remove spaces
	if term, ok := danskeBankTerms[cleanedTitle]; ok {
		return term, nil
	}
	return "", fmt.Errorf("failed to parse term from string '%s' (sanitized: '%s')", title, cleanedTitle)
}

func parseRows(rows []*html.Node) ([]rowStruct, error) {
	rowStructs := make([]rowStruct, 0, len(rows))
	for _, rowNode := range rows {
		cells, err := htmlquery.QueryAll(rowNode, "//td")
		if err != nil {
			return nil, fmt.Errorf("failed to xpath cells: %w", err)
		}
		if len(cells) == 0 {
			continue
		}

		fieldTexts := make([]string, 0, len(cells)-1)
		for _, cell := range cells[1:] {
			fieldTexts = append(fieldTexts, getAllTextFromNode(cell))
		}

		rowStructs = append(rowStructs, rowStruct{
			title:  getAllTextFromNode(cells[0]),
			fields: fieldTexts,
		})
	}

	return rowStructs, nil
}

// getAllTextFromNode concatenates the text below node, NFC-normalized so that "å" compares
// equal whether the page encodes it precomposed or as "a" plus a combining ring.
func getAllTextFromNode(node *html.Node) string {
	out := norm.NFC.String(htmlquery.InnerText(node))
	out = strings.ReplaceAll(out, "\u00a0", " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(out, " "))
}

type rowStruct struct {
	title  string
	fields []string
}
