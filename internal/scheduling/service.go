package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/metrics"
	"medcompanion-server/internal/models"
	"medcompanion-server/internal/store"
)

// Service books, moves and cancels appointments against the doctor
// directory. A (doctor, slot) pair holds at most one appointment.
type Service struct {
	datasets *store.Datasets
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(datasets *store.Datasets, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{datasets: datasets, log: log, metrics: m, now: time.Now}
}

// ModifyRequest moves an appointment. Empty New* fields keep the current value.
type ModifyRequest struct {
	CurrentDoctor   string
	CurrentTimeSlot string
	NewDoctor       string
	NewTimeSlot     string
}

// Doctors lists the directory sorted by doctor name
func (s *Service) Doctors(ctx context.Context) ([]models.Doctor, error) {
	dir, err := s.datasets.LoadDoctors(ctx)
	if err != nil {
		return nil, err
	}
	return dir.Listing(), nil
}

// DoctorSchedule returns one doctor's specialty and free slots
func (s *Service) DoctorSchedule(ctx context.Context, name string) (models.Doctor, error) {
	dir, err := s.datasets.LoadDoctors(ctx)
	if err != nil {
		return models.Doctor{}, err
	}
	profile, ok := dir[name]
	if !ok {
		return models.Doctor{}, fmt.Errorf("%w: doctor %q not found, available doctors: %s",
			models.ErrNotFound, name, strings.Join(dir.Names(), ", "))
	}
	slots := profile.FreeTime
	if slots == nil {
		slots = []string{}
	}
	return models.Doctor{Name: name, Specialty: profile.Specialty, AvailableSlots: slots}, nil
}

// List returns every appointment in storage order
func (s *Service) List(ctx context.Context) ([]models.Appointment, error) {
	return s.datasets.LoadAppointments(ctx)
}

// Book reserves slot with doctor
func (s *Service) Book(ctx context.Context, doctor, slot string) (models.Appointment, error) {
	var booked models.Appointment
	err := s.datasets.WithLock(ctx, store.KindAppointments, func(ctx context.Context) error {
		dir, err := s.datasets.LoadDoctors(ctx)
		if err != nil {
			return err
		}
		if err := checkSlot(dir, doctor, slot); err != nil {
			return err
		}

		appts, err := s.datasets.LoadAppointments(ctx)
		if err != nil {
			return err
		}
		if occupied(appts, doctor, slot) {
			return fmt.Errorf("%w: slot %q with %s is already booked", models.ErrConflict, slot, doctor)
		}

		booked = models.Appointment{
			ID:       uuid.NewString(),
			Doctor:   doctor,
			TimeSlot: slot,
			BookedAt: models.Timestamp{Time: s.now()},
		}
		return s.datasets.SaveAppointments(ctx, append(appts, booked))
	})
	s.record("book", err, doctor, slot)
	if err != nil {
		return models.Appointment{}, err
	}
	return booked, nil
}

// Modify moves an existing appointment to a new doctor and/or slot. The
// original is set aside before the conflict check, so moving onto its own
// pair succeeds. On conflict nothing is written.
func (s *Service) Modify(ctx context.Context, req ModifyRequest) (models.Appointment, error) {
	var moved models.Appointment
	err := s.datasets.WithLock(ctx, store.KindAppointments, func(ctx context.Context) error {
		appts, err := s.datasets.LoadAppointments(ctx)
		if err != nil {
			return err
		}
		idx := indexOf(appts, req.CurrentDoctor, req.CurrentTimeSlot)
		if idx < 0 {
			return fmt.Errorf("%w: appointment with %s at %q not found",
				models.ErrNotFound, req.CurrentDoctor, req.CurrentTimeSlot)
		}

		targetDoctor := req.NewDoctor
		if targetDoctor == "" {
			targetDoctor = req.CurrentDoctor
		}
		targetSlot := req.NewTimeSlot
		if targetSlot == "" {
			targetSlot = req.CurrentTimeSlot
		}

		dir, err := s.datasets.LoadDoctors(ctx)
		if err != nil {
			return err
		}
		if err := checkSlot(dir, targetDoctor, targetSlot); err != nil {
			return err
		}

		remaining := make([]models.Appointment, 0, len(appts))
		remaining = append(remaining, appts[:idx]...)
		remaining = append(remaining, appts[idx+1:]...)
		if occupied(remaining, targetDoctor, targetSlot) {
			// appts is left untouched and never saved
			return fmt.Errorf("%w: slot %q with %s is already booked", models.ErrConflict, targetSlot, targetDoctor)
		}

		now := models.Timestamp{Time: s.now()}
		moved = models.Appointment{
			ID:         uuid.NewString(),
			Doctor:     targetDoctor,
			TimeSlot:   targetSlot,
			BookedAt:   now,
			ModifiedAt: &now,
		}
		return s.datasets.SaveAppointments(ctx, append(remaining, moved))
	})
	s.record("modify", err, req.CurrentDoctor, req.CurrentTimeSlot)
	if err != nil {
		return models.Appointment{}, err
	}
	return moved, nil
}

// Cancel removes the appointment holding (doctor, slot)
func (s *Service) Cancel(ctx context.Context, doctor, slot string) error {
	err := s.datasets.WithLock(ctx, store.KindAppointments, func(ctx context.Context) error {
		appts, err := s.datasets.LoadAppointments(ctx)
		if err != nil {
			return err
		}
		kept := make([]models.Appointment, 0, len(appts))
		for _, appt := range appts {
			if !appt.Occupies(doctor, slot) {
				kept = append(kept, appt)
			}
		}
		if len(kept) == len(appts) {
			return fmt.Errorf("%w: appointment with %s at %q not found", models.ErrNotFound, doctor, slot)
		}
		return s.datasets.SaveAppointments(ctx, kept)
	})
	s.record("cancel", err, doctor, slot)
	return err
}

func checkSlot(dir models.DoctorDirectory, doctor, slot string) error {
	profile, ok := dir[doctor]
	if !ok {
		return fmt.Errorf("%w: doctor %q not found", models.ErrNotFound, doctor)
	}
	if !profile.OffersSlot(slot) {
		return fmt.Errorf("%w: slot %q is not available for %s, available: %s",
			models.ErrInvalidSlot, slot, doctor, strings.Join(profile.FreeTime, ", "))
	}
	return nil
}

func indexOf(appts []models.Appointment, doctor, slot string) int {
	for i, appt := range appts {
		if appt.Occupies(doctor, slot) {
			return i
		}
	}
	return -1
}

func occupied(appts []models.Appointment, doctor, slot string) bool {
	return indexOf(appts, doctor, slot) >= 0
}

// Outcome labels an error for metrics and logs
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return models.ErrorKind(err)
}

func (s *Service) record(operation string, err error, doctor, slot string) {
	outcome := Outcome(err)
	s.metrics.ObserveScheduling(operation, outcome)

	entry := s.log.WithComponent("scheduling").WithFields(map[string]any{
		"operation": operation,
		"doctor":    doctor,
		"time_slot": slot,
		"result":    outcome,
	})
	if err != nil {
		entry.WithError(err).Info("appointment operation rejected")
		return
	}
	entry.Info("appointment operation applied")
}
