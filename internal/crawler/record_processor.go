package crawler

import (
	"context"

	"table-scraper/pkg/models"
)

// RecordProcessor implements engine.Processor for table rows.
type RecordProcessor struct {
	Parser *Parser
}

func (p *RecordProcessor) Process(ctx context.Context, url string) ([]models.Record, error) {
	return p.Parser.Scrape(ctx, url)
}
