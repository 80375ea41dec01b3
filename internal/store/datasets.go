package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/metrics"
	"medcompanion-server/internal/models"
)

// Datasets is the typed handle over the three dataset documents. Every load
// reads the backend afresh; nothing is cached between calls.
type Datasets struct {
	backend Backend
	locker  Locker
	log     *logger.Logger
	metrics *metrics.Metrics
}

// Option customizes Datasets
type Option func(*Datasets)

// WithLocker replaces the default in-process locker
func WithLocker(l Locker) Option {
	return func(d *Datasets) { d.locker = l }
}

// WithLogger sets the logger used for degraded loads
func WithLogger(l *logger.Logger) Option {
	return func(d *Datasets) { d.log = l }
}

// WithMetrics records degraded loads
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Datasets) { d.metrics = m }
}

func New(backend Backend, opts ...Option) *Datasets {
	d := &Datasets{backend: backend}
	for _, opt := range opts {
		opt(d)
	}
	if d.locker == nil {
		d.locker = NewLocalLocker()
	}
	if d.log == nil {
		d.log = logger.Default()
	}
	return d
}

// WithLock runs fn while holding the lock for kind
func (d *Datasets) WithLock(ctx context.Context, kind Kind, fn func(ctx context.Context) error) error {
	unlock, err := d.locker.Lock(ctx, string(kind))
	if err != nil {
		return fmt.Errorf("%w: lock %s: %w", models.ErrUnavailable, kind, err)
	}
	defer unlock()
	return fn(ctx)
}

// load decodes kind into out. Absent or malformed documents leave out
// untouched and are not errors.
func (d *Datasets) load(ctx context.Context, kind Kind, out any) error {
	data, err := d.backend.Read(ctx, kind)
	if errors.Is(err, ErrNoDocument) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrIOFailure, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		d.log.WithComponent("store").WithError(err).WithField("kind", string(kind)).
			Warn("dataset unreadable, using empty collection")
		d.metrics.ObserveDegradedLoad(string(kind))
		return errDegraded
	}
	return nil
}

var errDegraded = errors.New("degraded")

func (d *Datasets) save(ctx context.Context, kind Kind, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := d.backend.Write(ctx, kind, data); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIOFailure, err)
	}
	return nil
}

// LoadDoctors returns the doctor directory, empty if absent or unreadable
func (d *Datasets) LoadDoctors(ctx context.Context) (models.DoctorDirectory, error) {
	var dir models.DoctorDirectory
	if err := d.load(ctx, KindDoctors, &dir); err != nil {
		if errors.Is(err, errDegraded) {
			return models.DoctorDirectory{}, nil
		}
		return nil, err
	}
	if dir == nil {
		dir = models.DoctorDirectory{}
	}
	return dir, nil
}

// SaveDoctors writes the directory. The services never call it; it exists
// for seeding.
func (d *Datasets) SaveDoctors(ctx context.Context, dir models.DoctorDirectory) error {
	if dir == nil {
		dir = models.DoctorDirectory{}
	}
	return d.save(ctx, KindDoctors, dir)
}

// LoadAppointments returns every appointment in storage order
func (d *Datasets) LoadAppointments(ctx context.Context) ([]models.Appointment, error) {
	var appts []models.Appointment
	if err := d.load(ctx, KindAppointments, &appts); err != nil {
		if errors.Is(err, errDegraded) {
			return []models.Appointment{}, nil
		}
		return nil, err
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	return appts, nil
}

// SaveAppointments replaces the stored appointment list
func (d *Datasets) SaveAppointments(ctx context.Context, appts []models.Appointment) error {
	if appts == nil {
		appts = []models.Appointment{}
	}
	return d.save(ctx, KindAppointments, appts)
}

// LoadReportSummaries returns the summary index in storage order
func (d *Datasets) LoadReportSummaries(ctx context.Context) ([]models.ReportSummary, error) {
	var summaries []models.ReportSummary
	if err := d.load(ctx, KindReportSummaries, &summaries); err != nil {
		if errors.Is(err, errDegraded) {
			return []models.ReportSummary{}, nil
		}
		return nil, err
	}
	if summaries == nil {
		summaries = []models.ReportSummary{}
	}
	return summaries, nil
}

// SaveReportSummaries replaces the stored summary index
func (d *Datasets) SaveReportSummaries(ctx context.Context, summaries []models.ReportSummary) error {
	if summaries == nil {
		summaries = []models.ReportSummary{}
	}
	return d.save(ctx, KindReportSummaries, summaries)
}
