package models

import "sort"

// DoctorProfile is one entry of the doctor directory file
type DoctorProfile struct {
	Specialty string   `json:"specialty"`
	FreeTime  []string `json:"free_time"`
}

// DoctorDirectory maps doctor name to profile, the shape of doctors.json
type DoctorDirectory map[string]DoctorProfile

// Doctor is the flattened listing view handed to callers
type Doctor struct {
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	AvailableSlots []string `json:"available_slots"`
}

// OffersSlot reports whether the slot is listed in the doctor's free time
func (p DoctorProfile) OffersSlot(slot string) bool {
	for _, s := range p.FreeTime {
		if s == slot {
			return true
		}
	}
	return false
}

// Names returns the doctor names in sorted order
func (d DoctorDirectory) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Listing flattens the directory, sorted by name
func (d DoctorDirectory) Listing() []Doctor {
	doctors := make([]Doctor, 0, len(d))
	for _, name := range d.Names() {
		profile := d[name]
		specialty := profile.Specialty
		if specialty == "" {
			specialty = DefaultUnknown
		}
		slots := profile.FreeTime
		if slots == nil {
			slots = []string{}
		}
		doctors = append(doctors, Doctor{Name: name, Specialty: specialty, AvailableSlots: slots})
	}
	return doctors
}
