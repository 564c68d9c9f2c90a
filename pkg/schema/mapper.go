package schema

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Candidate is a match proposed for a dataset.
type Candidate struct {
	DataSetID int64 `json:"data_set_id" yaml:"data_set_id"`
	Match     Match `json:"match" yaml:"match"`
}

// Scanner proposes candidates for a query. Implementations wrap the
// dictionaries, embedding stores and rules that find schema words in text.
type Scanner interface {
	Scan(ctx context.Context, query string) ([]Candidate, error)
}

// ScannerFunc adapts a function to Scanner.
type ScannerFunc func(ctx context.Context, query string) ([]Candidate, error)

// Scan calls f.
func (f ScannerFunc) Scan(ctx context.Context, query string) ([]Candidate, error) {
	return f(ctx, query)
}

// StaticScanner proposes a fixed candidate list for any query.
type StaticScanner []Candidate

// Scan returns the candidates.
func (s StaticScanner) Scan(_ context.Context, _ string) ([]Candidate, error) {
	return s, nil
}

// Named gives a scanner a name for log records.
func Named(name string, s Scanner) Scanner {
	return namedScanner{name: name, Scanner: s}
}

type namedScanner struct {
	name string
	Scanner
}

func scannerName(s Scanner) string {
	if n, ok := s.(namedScanner); ok {
		return n.name
	}
	return fmt.Sprintf("%T", s)
}

// Mapper runs scanners over a query and merges their candidates.
type Mapper struct {
	scanners []Scanner
	logger   *slog.Logger
}

// NewMapper creates a Mapper. A nil logger discards output.
func NewMapper(logger *slog.Logger, scanners ...Scanner) *Mapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mapper{scanners: scanners, logger: logger}
}

// Map runs every scanner in order, adding candidates to info and filtering
// it by q after each scanner. Candidate aliases are narrowed with
// AliasesFor before they are added. A failing scanner is logged and skipped.
// Map stops early when ctx is done and returns its error.
func (m *Mapper) Map(ctx context.Context, query string, q QueryDataType, info *MapInfo) error {
	for _, s := range m.scanners {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := scannerName(s)
		start := time.Now()
		m.logger.Debug("before scan", "scanner", name, "matches", info.Len())

		candidates, err := s.Scan(ctx, query)
		if err != nil {
			m.logger.Error("scan failed", "scanner", name, "error", err)
			continue
		}
		kept := 0
		for _, c := range candidates {
			c.Match.Element.Aliases = AliasesFor(c.Match.Element)
			if info.Add(c.DataSetID, c.Match) {
				kept++
			}
		}
		info.Filter(q)

		m.logger.Info("after scan",
			"scanner", name,
			"candidates", len(candidates),
			"kept", kept,
			"matches", info.Len(),
			"cost", time.Since(start))
	}
	return nil
}
