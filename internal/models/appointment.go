package models

// Appointment occupies one (doctor, time slot) pair. At most one appointment
// may hold a given pair.
type Appointment struct {
	// ID is informational; appointments are addressed by (Doctor, TimeSlot).
	ID         string     `json:"id,omitempty"`
	Doctor     string     `json:"doctor"`
	TimeSlot   string     `json:"time_slot"`
	BookedAt   Timestamp  `json:"booked_at"`
	ModifiedAt *Timestamp `json:"modified_at,omitempty"`
}

// Occupies reports whether the appointment holds the given doctor and slot
func (a Appointment) Occupies(doctor, timeSlot string) bool {
	return a.Doctor == doctor && a.TimeSlot == timeSlot
}
