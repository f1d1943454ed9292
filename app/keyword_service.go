package app

import (
	"context"
	"fmt"
	"time"

	"gokeyword/domain/core"
	"gokeyword/domain/keyword"
	"gokeyword/domain/region"
	"gokeyword/internal"
	"gokeyword/internal/combine"
	"gokeyword/internal/errors"
	"gokeyword/ports"
)

var errNoDatabase = fmt.Errorf("no reference database configured")

// KeywordService orchestrates reference loading, combination generation and
// categorization. The repository may be nil, in which case the reference is
// always empty and every row stays uncategorized.
type KeywordService struct {
	regionRepo ports.RegionRepository
	generator  *combine.Generator
	dedupe     bool
	logger     *internal.Logger
}

// KeywordServiceConfig holds service settings
type KeywordServiceConfig struct {
	MaxRows         int
	DedupeReference bool
}

// GenerateRequest defines inputs for one generation pass
type GenerateRequest struct {
	Regions []string
	Groups  []keyword.KeywordGroup
}

// GenerateResult contains the categorized table and any non-fatal warnings
type GenerateResult struct {
	RunID          core.RunID
	Groups         []keyword.KeywordGroup
	Rows           []region.CategorizedRow
	Table          *combine.Table
	ReferenceCount int
	MatchedRows    int
	Warnings       []string
	RuntimeMs      int64
}

// NewKeywordService creates a keyword service
func NewKeywordService(regionRepo ports.RegionRepository, cfg KeywordServiceConfig, logger *internal.Logger) *KeywordService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &KeywordService{
		regionRepo: regionRepo,
		generator:  combine.NewGenerator(cfg.MaxRows),
		dedupe:     cfg.DedupeReference,
		logger:     logger.Named("keyword-service"),
	}
}

// LoadReference returns the reference table. Failures degrade to an empty
// reference plus a warning instead of an error: a missing hierarchy only
// leaves the level columns blank.
func (s *KeywordService) LoadReference(ctx context.Context) ([]region.Record, error) {
	if s.regionRepo == nil {
		return nil, core.NewReferenceUnavailableError(errNoDatabase)
	}
	records, err := s.regionRepo.List(ctx)
	if err != nil {
		s.logger.Warn("reference load failed, continuing without hierarchy: %v", err)
		if core.IsReferenceUnavailable(err) {
			return nil, err
		}
		return nil, core.NewReferenceUnavailableError(err)
	}
	s.logger.Info("loaded %d reference records", len(records))
	if s.dedupe {
		records = combine.DedupeReference(records)
	}
	return records, nil
}

// Generate expands the request into combinations and categorizes them
func (s *KeywordService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	startTime := time.Now()
	runID := core.NewRunID()

	groups, err := keyword.AssignIDs(req.Groups)
	if err != nil {
		return nil, errors.Wrap(err, "invalid keyword groups")
	}

	batch, err := s.generator.Generate(req.Regions, groups)
	if err != nil {
		s.logger.Warn("run %s rejected: %v", runID, err)
		return nil, errors.Wrap(err, "keyword generation failed")
	}

	result := &GenerateResult{RunID: runID, Groups: groups}
	for _, w := range batch.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	var reference []region.Record
	if len(batch.Rows) > 0 {
		reference, err = s.LoadReference(ctx)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}
	}

	result.Rows = combine.Categorize(batch.Rows, reference)
	result.Table = combine.NewTable(groups, result.Rows)
	result.ReferenceCount = len(reference)
	for _, row := range result.Rows {
		if row.Matched() {
			result.MatchedRows++
		}
	}
	result.RuntimeMs = time.Since(startTime).Milliseconds()

	s.logger.Info("run %s: %d regions x %d groups -> %d rows (%d categorized) in %dms",
		runID, len(req.Regions), len(groups), len(result.Rows), result.MatchedRows, result.RuntimeMs)
	return result, nil
}

// ListReference returns the stored reference records without degradation
func (s *KeywordService) ListReference(ctx context.Context) ([]region.Record, error) {
	if s.regionRepo == nil {
		return nil, core.NewReferenceUnavailableError(errNoDatabase)
	}
	records, err := s.regionRepo.List(ctx)
	if err != nil {
		if core.IsReferenceUnavailable(err) {
			return nil, errors.Wrap(err, "failed to list reference records")
		}
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to list reference records"))
	}
	return records, nil
}

// ImportReference replaces the stored reference with records
func (s *KeywordService) ImportReference(ctx context.Context, records []region.Record) error {
	if len(records) == 0 {
		return errors.ValidationError("reference import has no usable rows")
	}
	if s.regionRepo == nil {
		return core.NewReferenceUnavailableError(errNoDatabase)
	}
	if err := s.regionRepo.ReplaceAll(ctx, records); err != nil {
		s.logger.Error("reference import failed: %v", err)
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	s.logger.Info("replaced reference with %d records", len(records))
	return nil
}

// ReferenceAvailable reports whether a reference table can be read
func (s *KeywordService) ReferenceAvailable(ctx context.Context) bool {
	if s.regionRepo == nil {
		return false
	}
	_, err := s.regionRepo.Count(ctx)
	return err == nil
}
