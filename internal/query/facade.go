package query

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"medcompanion-server/internal/models"
	"medcompanion-server/internal/store"
)

// Facade serves the read-only views shared by the HTTP API and the agent
// tools. Every call reads the datasets afresh.
type Facade struct {
	datasets *store.Datasets
	dir      string
}

func NewFacade(datasets *store.Datasets, dir string) *Facade {
	return &Facade{datasets: datasets, dir: dir}
}

// ReportDetail is the raw content of one report file
type ReportDetail struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (f *Facade) ListReports(ctx context.Context) ([]models.ReportSummary, error) {
	return f.datasets.LoadReportSummaries(ctx)
}

// ReportContent returns a report's raw content. Only the base name of
// filename is used, so the file must live directly in the report directory.
func (f *Facade) ReportContent(_ context.Context, filename string) (ReportDetail, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." || name == ".." {
		return ReportDetail{}, fmt.Errorf("%w: report not found", models.ErrNotFound)
	}

	path := filepath.Join(f.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ReportDetail{}, fmt.Errorf("%w: report not found", models.ErrNotFound)
		}
		return ReportDetail{}, fmt.Errorf("%w: %w", models.ErrIOFailure, err)
	}
	if info.IsDir() {
		return ReportDetail{}, fmt.Errorf("%w: report not found", models.ErrNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ReportDetail{}, fmt.Errorf("%w: read %s: %w", models.ErrIOFailure, name, err)
	}
	return ReportDetail{Filename: name, Content: string(data)}, nil
}

// ListDoctors returns the directory exactly as stored
func (f *Facade) ListDoctors(ctx context.Context) (models.DoctorDirectory, error) {
	return f.datasets.LoadDoctors(ctx)
}

func (f *Facade) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	return f.datasets.LoadAppointments(ctx)
}
