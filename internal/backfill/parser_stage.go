package backfill

import (
	"context"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
)

// ParserStage handles parsing rows into events
type ParserStage struct {
	parser  RowParser
	log     *zap.Logger
	parsed  int
	skipped int
}

// NewParserStage creates a new parser stage
func NewParserStage(parser RowParser, log *zap.Logger) *ParserStage {
	return &ParserStage{
		parser: parser,
		log:    log,
	}
}

// Start begins parsing rows and outputs events
func (p *ParserStage) Start(ctx context.Context, in <-chan Row, out chan<- *domain.FallEvent) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case row, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}

			event, err := p.parser.Parse(row.Fields)
			if err != nil {
				p.skipped++
				p.log.Warn("Skipping unparseable row",
					zap.Int("line", row.Line),
					zap.Strings("fields", row.Fields),
					zap.Error(err))
				continue
			}
			p.parsed++

			select {
			case <-ctx.Done():
				return
			case out <- event:
			}
		}
	}
}

// Parsed returns the number of rows turned into events
func (p *ParserStage) Parsed() int {
	return p.parsed
}

// Skipped returns the number of rows that could not be parsed
func (p *ParserStage) Skipped() int {
	return p.skipped
}
