package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/models"
	"medcompanion-server/internal/store"
)

const (
	smith  = "Dr. Smith"
	jones  = "Dr. Jones"
	monday = "Monday 10:00-12:00"
	monPM  = "Monday 14:00-16:00"
	tues   = "Tuesday 09:00-11:00"
)

func newTestService(t *testing.T) (*Service, *store.Datasets) {
	t.Helper()
	ds := store.New(store.NewMemoryBackend(), store.WithLogger(logger.Discard()))
	require.NoError(t, ds.SaveDoctors(context.Background(), models.DoctorDirectory{
		smith: {Specialty: "Cardiology", FreeTime: []string{monday, monPM}},
		jones: {Specialty: "Dermatology", FreeTime: []string{tues}},
	}))
	svc := NewService(ds, logger.Discard(), nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }
	return svc, ds
}

func countPair(appts []models.Appointment, doctor, slot string) int {
	n := 0
	for _, a := range appts {
		if a.Occupies(doctor, slot) {
			n++
		}
	}
	return n
}

func TestBookThenList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Book(ctx, smith, monday)
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, 2024, appt.BookedAt.Year())
	assert.Nil(t, appt.ModifiedAt)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, countPair(appts, smith, monday))
}

func TestBookTwiceConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, smith, monday)
	require.NoError(t, err)

	_, err = svc.Book(ctx, smith, monday)
	assert.ErrorIs(t, err, models.ErrConflict)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestBookValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, "Dr. Who", monday)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Book(ctx, jones, monday)
	assert.ErrorIs(t, err, models.ErrInvalidSlot)
	assert.Contains(t, err.Error(), tues)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, smith, monday)
	require.NoError(t, err)
	_, err = svc.Book(ctx, jones, tues)
	require.NoError(t, err)

	err = svc.Cancel(ctx, smith, tues)
	assert.ErrorIs(t, err, models.ErrNotFound)
	appts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, appts, 2)

	require.NoError(t, svc.Cancel(ctx, smith, monday))
	appts, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, jones, appts[0].Doctor)
}

func TestModifyToSamePairSucceeds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, smith, monday)
	require.NoError(t, err)

	moved, err := svc.Modify(ctx, ModifyRequest{CurrentDoctor: smith, CurrentTimeSlot: monday})
	require.NoError(t, err)
	assert.Equal(t, smith, moved.Doctor)
	assert.Equal(t, monday, moved.TimeSlot)
	require.NotNil(t, moved.ModifiedAt)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, 1, countPair(appts, smith, monday))
}

func TestModifyMovesAppointment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, smith, monday)
	require.NoError(t, err)
	_, err = svc.Book(ctx, jones, tues)
	require.NoError(t, err)

	_, err = svc.Modify(ctx, ModifyRequest{CurrentDoctor: smith, CurrentTimeSlot: monday, NewTimeSlot: monPM})
	require.NoError(t, err)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, 0, countPair(appts, smith, monday))
	assert.Equal(t, 1, countPair(appts, smith, monPM))
	// replacement is appended
	assert.Equal(t, monPM, appts[1].TimeSlot)
}

func TestModifyConflictLeavesBothIntact(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, smith, monday)
	require.NoError(t, err)
	_, err = svc.Book(ctx, smith, monPM)
	require.NoError(t, err)
	before, err := svc.List(ctx)
	require.NoError(t, err)

	_, err = svc.Modify(ctx, ModifyRequest{CurrentDoctor: smith, CurrentTimeSlot: monday, NewTimeSlot: monPM})
	assert.ErrorIs(t, err, models.ErrConflict)

	after, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestModifyValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, smith, monday)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  ModifyRequest
		want error
	}{
		{"unknown appointment", ModifyRequest{CurrentDoctor: smith, CurrentTimeSlot: monPM}, models.ErrNotFound},
		{"partial match is not a match", ModifyRequest{CurrentDoctor: jones, CurrentTimeSlot: monday}, models.ErrNotFound},
		{"unknown target doctor", ModifyRequest{CurrentDoctor: smith, CurrentTimeSlot: monday, NewDoctor: "Dr. Who"}, models.ErrNotFound},
		{"slot not offered by target", ModifyRequest{CurrentDoctor: smith, CurrentTimeSlot: monday, NewDoctor: jones}, models.ErrInvalidSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Modify(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)

			appts, err := svc.List(ctx)
			require.NoError(t, err)
			require.Len(t, appts, 1)
			assert.Equal(t, 1, countPair(appts, smith, monday))
		})
	}
}

func TestModifyToOtherDoctor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, smith, monday)
	require.NoError(t, err)

	moved, err := svc.Modify(ctx, ModifyRequest{CurrentDoctor: smith, CurrentTimeSlot: monday, NewDoctor: jones, NewTimeSlot: tues})
	require.NoError(t, err)
	assert.Equal(t, jones, moved.Doctor)

	// the freed slot can be booked again
	_, err = svc.Book(ctx, smith, monday)
	require.NoError(t, err)
}

func TestConcurrentBookingsYieldOneAppointment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(ctx, smith, monday)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, models.ErrConflict)
	}
	assert.Equal(t, 1, successes)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestDoctorsAndSchedule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doctors, err := svc.Doctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, jones, doctors[0].Name)
	assert.Equal(t, smith, doctors[1].Name)

	sched, err := svc.DoctorSchedule(ctx, smith)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", sched.Specialty)
	assert.Equal(t, []string{monday, monPM}, sched.AvailableSlots)

	_, err = svc.DoctorSchedule(ctx, "Dr. Who")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "Dr. Jones, Dr. Smith")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "conflict", Outcome(models.ErrConflict))
	assert.Equal(t, "invalid_slot", Outcome(models.ErrInvalidSlot))
	assert.Equal(t, "not_found", Outcome(models.ErrNotFound))
	assert.Equal(t, "unavailable", Outcome(models.ErrUnavailable))
	assert.Equal(t, "io_failure", Outcome(models.ErrIOFailure))
}

func TestBookConflictsWithForeignTimestampRecord(t *testing.T) {
	backend := store.NewMemoryBackend()
	ds := store.New(backend, store.WithLogger(logger.Discard()))
	ctx := context.Background()
	require.NoError(t, ds.SaveDoctors(ctx, models.DoctorDirectory{
		smith: {Specialty: "Cardiology", FreeTime: []string{monday}},
	}))
	backend.Put(store.KindAppointments,
		`[{"doctor":"Dr. Smith","time_slot":"Monday 10:00-12:00","booked_at":"01/05/2024 09:30"}]`)
	svc := NewService(ds, logger.Discard(), nil)

	_, err := svc.Book(ctx, smith, monday)
	assert.ErrorIs(t, err, models.ErrConflict)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, `"01/05/2024 09:30"`, appts[0].BookedAt.Raw())
}
