package discount

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"discount-engine/internal/model"

	"github.com/rs/zerolog"
)

// Source opens a gzipped code file for import.
type Source interface {
	// Open returns a reader over the raw (still compressed) file contents.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// CodeWriter persists imported discount codes. Codes that already exist are
// skipped, not overwritten.
type CodeWriter interface {
	CreateCodes(ctx context.Context, codes []model.DiscountCode) (int, error)
}

// Importer bulk-creates discount codes for a campaign from a gzipped file of
// one code per line, applying a shared template to every code.
type Importer struct {
	source    Source
	writer    CodeWriter
	batchSize int
	logger    zerolog.Logger
}

// NewImporter creates a new code importer.
func NewImporter(source Source, writer CodeWriter, logger zerolog.Logger) *Importer {
	return &Importer{
		source:    source,
		writer:    writer,
		batchSize: 500,
		logger:    logger.With().Str("component", "code-importer").Logger(),
	}
}

// Import reads the code file at path and inserts one discount code per line
// using the template. Codes are trimmed and upper-cased; blank lines,
// duplicates within the file and codes already present are skipped.
func (im *Importer) Import(ctx context.Context, path string, tmpl model.CodeTemplate) (*model.ImportResponse, error) {
	im.logger.Info().Str("path", path).Msg("starting discount code import")

	body, err := im.source.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open code file %s: %w", path, err)
	}
	defer body.Close()

	gzipReader, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	now := time.Now()
	seen := make(map[string]struct{})
	batch := make([]model.DiscountCode, 0, im.batchSize)
	resp := &model.ImportResponse{}

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := im.writer.CreateCodes(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to insert code batch: %w", err)
		}
		resp.Inserted += inserted
		resp.Skipped += len(batch) - inserted
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		code := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			resp.Skipped++
			continue
		}
		seen[code] = struct{}{}

		batch = append(batch, newCodeFromTemplate(code, tmpl, now))
		if len(batch) >= im.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read code file %s: %w", path, err)
	}

	if err := flush(); err != nil {
		return nil, err
	}

	im.logger.Info().
		Str("path", path).
		Int("inserted", resp.Inserted).
		Int("skipped", resp.Skipped).
		Msg("discount code import completed")

	return resp, nil
}

// newCodeFromTemplate stamps the campaign template onto a single code.
func newCodeFromTemplate(code string, tmpl model.CodeTemplate, now time.Time) model.DiscountCode {
	return model.DiscountCode{
		Code:              code,
		DiscountType:      tmpl.DiscountType,
		DiscountValue:     tmpl.DiscountValue,
		MinPurchaseAmount: tmpl.MinPurchaseAmount,
		Scope:             tmpl.Scope,
		ProductID:         tmpl.ProductID,
		LimitationType:    tmpl.LimitationType,
		StartDate:         tmpl.StartDate,
		EndDate:           tmpl.EndDate,
		UsageLimit:        tmpl.UsageLimit,
		UsageLimitPerUser: tmpl.UsageLimitPerUser,
		IsActive:          true,
		CreatedAt:         now,
	}
}
