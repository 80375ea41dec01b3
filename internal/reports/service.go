package reports

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/metrics"
	"medcompanion-server/internal/models"
	"medcompanion-server/internal/store"
)

// DefaultCheckupLimit is used when AnalyzePastCheckups gets a non-positive limit
const DefaultCheckupLimit = 3

// DocumentAnalyzer extracts text from images and PDFs
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Service manages raw report files and the summary index next to them
type Service struct {
	datasets *store.Datasets
	dir      string
	analyzer DocumentAnalyzer
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewService creates a report service. analyzer may be nil, in which case
// image and PDF reports cannot be read.
func NewService(datasets *store.Datasets, dir string, analyzer DocumentAnalyzer, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{datasets: datasets, dir: dir, analyzer: analyzer, log: log, metrics: m}
}

// Dir returns the directory holding raw reports
func (s *Service) Dir() string {
	return s.dir
}

// SaveReport writes the raw content under filename, parses its summary and
// upserts it into the index. filename is joined to the report directory as
// is; callers must reject traversal sequences.
func (s *Service) SaveReport(ctx context.Context, filename, content string) (models.Summary, error) {
	if strings.TrimSpace(filename) == "" {
		return models.Summary{}, fmt.Errorf("%w: filename is required", models.ErrInvalidInput)
	}
	summary := ParseSummary(content)

	err := s.datasets.WithLock(ctx, store.KindReportSummaries, func(ctx context.Context) error {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("%w: create report dir: %w", models.ErrIOFailure, err)
		}
		if err := os.WriteFile(filepath.Join(s.dir, filename), []byte(content), 0o644); err != nil {
			return fmt.Errorf("%w: write report %s: %w", models.ErrIOFailure, filename, err)
		}

		summaries, err := s.datasets.LoadReportSummaries(ctx)
		if err != nil {
			return err
		}
		kept := summaries[:0]
		for _, entry := range summaries {
			if entry.Filename != filename {
				kept = append(kept, entry)
			}
		}
		kept = append(kept, models.ReportSummary{Filename: filename, Summary: summary})
		return s.datasets.SaveReportSummaries(ctx, kept)
	})
	if err != nil {
		return models.Summary{}, err
	}

	s.metrics.ObserveReportSaved()
	s.log.WithComponent("reports").WithField("filename", filename).Info("report saved and summarized")
	return summary, nil
}

// Summaries returns the whole summary index in storage order
func (s *Service) Summaries(ctx context.Context) ([]models.ReportSummary, error) {
	return s.datasets.LoadReportSummaries(ctx)
}

// ListReportFiles returns the names of the plain-text reports on disk
func (s *Service) ListReportFiles(_ context.Context) ([]string, error) {
	if _, err := os.Stat(s.dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: datasets directory not found", models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", models.ErrIOFailure, err)
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIOFailure, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names, nil
}

// ReadReport returns a report's content. Text is returned as stored; images
// and PDFs go through the document analyzer.
func (s *Service) ReadReport(ctx context.Context, name string) (string, error) {
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: report %q not found in %s", models.ErrNotFound, name, s.dir)
		}
		return "", fmt.Errorf("%w: %w", models.ErrIOFailure, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: report %q not found in %s", models.ErrNotFound, name, s.dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read report %s: %w", models.ErrIOFailure, name, err)
	}

	mimeType := DetectMIME(data, name)
	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return string(data), nil
	case isDocument(mimeType):
		return s.analyze(ctx, data, mimeType)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: could not read file %s, mime %s is not text", models.ErrInvalidInput, name, mimeType)
	}
	return string(data), nil
}

func (s *Service) analyze(ctx context.Context, data []byte, mimeType string) (string, error) {
	if s.analyzer == nil {
		return "", fmt.Errorf("%w: document analysis is not configured (set GOOGLE_API_KEY)", models.ErrUnavailable)
	}
	text, err := s.analyzer.Analyze(ctx, data, mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrUnavailable, err)
	}
	return text, nil
}

// DetectMIME sniffs the content type and falls back to the file extension
// when sniffing is inconclusive. The result carries no parameters.
func DetectMIME(data []byte, name string) string {
	detected := mimetype.Detect(data).String()
	base, _, _ := strings.Cut(detected, ";")
	base = strings.TrimSpace(base)
	if base != "" && base != "application/octet-stream" {
		return base
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg", ".webp":
		return "image/jpeg"
	}
	return base
}

func isDocument(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf"
}

// AnalyzePastCheckups projects the last limit summaries, in storage order,
// into parallel histories.
func (s *Service) AnalyzePastCheckups(ctx context.Context, limit int) (models.CheckupAnalysis, error) {
	if limit <= 0 {
		limit = DefaultCheckupLimit
	}
	summaries, err := s.datasets.LoadReportSummaries(ctx)
	if err != nil {
		return models.CheckupAnalysis{}, err
	}
	if len(summaries) > limit {
		summaries = summaries[len(summaries)-limit:]
	}

	analysis := models.CheckupAnalysis{
		ReportsAnalyzed:  len(summaries),
		DiagnosesHistory: make([]string, 0, len(summaries)),
		SymptomsHistory:  make([]string, 0, len(summaries)),
		MedicinesHistory: make([]string, 0, len(summaries)),
		Message:          "Analysis based on available report summaries.",
	}
	for _, entry := range summaries {
		analysis.DiagnosesHistory = append(analysis.DiagnosesHistory, entry.Summary.Diagnosis)
		analysis.SymptomsHistory = append(analysis.SymptomsHistory, entry.Summary.Other)
		analysis.MedicinesHistory = append(analysis.MedicinesHistory, entry.Summary.Medicines)
	}
	return analysis, nil
}
