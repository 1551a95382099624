package crawler

import (
	"bytes"
	"context"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"table-scraper/pkg/models"
)

// RowCells is the only cell count that turns a table row into a Record.
const RowCells = 4

// IsCandidateRow is the structural filter: rows with any other cell count are skipped.
func IsCandidateRow(cells int) bool {
	return cells == RowCells
}

// ExtractLinks returns every non-empty href on an anchor, in document order.
// Duplicates are kept and values are returned as written in the page.
func ExtractLinks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []string

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" && a.Val != "" {
					links = append(links, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	return links, nil
}

// ExtractRecords turns every four-cell <tr> into a Record tagged with pageURL.
// Cell text is taken as-is, including surrounding whitespace.
func ExtractRecords(r io.Reader, pageURL string) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if !IsCandidateRow(cells.Length()) {
			return
		}
		records = append(records, models.Record{
			Name:        cells.Eq(0).Text(),
			Description: cells.Eq(1).Text(),
			Price:       cells.Eq(2).Text(),
			Rating:      cells.Eq(3).Text(),
			URL:         pageURL,
		})
	})
	return records, nil
}

// Parser composes a Fetcher with the extractors for one page at a time.
type Parser struct {
	Fetcher Fetcher
}

func NewParser(fetcher Fetcher) *Parser {
	return &Parser{Fetcher: fetcher}
}

// Scrape fetches targetURL and returns its records. Errors are passed through.
func (p *Parser) Scrape(ctx context.Context, targetURL string) ([]models.Record, error) {
	body, err := p.Fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	return ExtractRecords(bytes.NewReader(body), targetURL)
}

// GetOutBoundLinks fetches targetURL and returns the href values found on it.
func (p *Parser) GetOutBoundLinks(ctx context.Context, targetURL string) ([]string, error) {
	body, err := p.Fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	return ExtractLinks(bytes.NewReader(body))
}
