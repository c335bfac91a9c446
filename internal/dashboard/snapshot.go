package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable means the aggregate statistics could not be obtained or were malformed.
	ErrDataUnavailable = errors.New("aggregate statistics unavailable")
	// ErrAggregationUnavailable is the name the dashboard view uses for the same condition.
	ErrAggregationUnavailable = ErrDataUnavailable
)

// Snapshot is one point-in-time copy of the admin statistics. Every field is optional;
// an absent field counts as zero. A Snapshot is never modified after it is fetched.
type Snapshot struct {
	Doctors      *DoctorCounts      `json:"doctors,omitempty"`
	Patients     *PatientCounts     `json:"patients,omitempty"`
	Appointments *AppointmentCounts `json:"appointments,omitempty"`
	Predictions  *PredictionCounts  `json:"predictions,omitempty"`
}

type DoctorCounts struct {
	Total    *int64 `json:"total,omitempty"`
	Approved *int64 `json:"approved,omitempty"`
}

type PatientCounts struct {
	Total *int64 `json:"total,omitempty"`
}

type AppointmentCounts struct {
	Total   *int64 `json:"total,omitempty"`
	Pending *int64 `json:"pending,omitempty"`
}

type PredictionCounts struct {
	TotalPredictions *int64 `json:"total_predictions,omitempty"`
}

// Validate rejects negative counters.
func (s *Snapshot) Validate() error {
	if s == nil {
		return nil
	}
	c := s.counters()
	for _, f := range []struct {
		name string
		v    int64
	}{
		{"doctors.total", c.TotalDoctors},
		{"doctors.approved", c.ApprovedDoctors},
		{"patients.total", c.TotalPatients},
		{"appointments.total", c.TotalAppointments},
		{"appointments.pending", c.PendingAppointments},
		{"predictions.total_predictions", c.TotalPredictions},
	} {
		if f.v < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrDataUnavailable, f.name, f.v)
		}
	}
	return nil
}

// counters flattens the snapshot, reading absent sections and fields as zero.
func (s *Snapshot) counters() Counters {
	var c Counters
	if s == nil {
		return c
	}
	if d := s.Doctors; d != nil {
		c.TotalDoctors = val(d.Total)
		c.ApprovedDoctors = val(d.Approved)
	}
	if p := s.Patients; p != nil {
		c.TotalPatients = val(p.Total)
	}
	if a := s.Appointments; a != nil {
		c.TotalAppointments = val(a.Total)
		c.PendingAppointments = val(a.Pending)
	}
	if p := s.Predictions; p != nil {
		c.TotalPredictions = val(p.TotalPredictions)
	}
	return c
}

func val(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
