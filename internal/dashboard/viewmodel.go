package dashboard

import "time"

// Status is the lifecycle state of the dashboard data.
type Status string

const (
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusUnavailable Status = "unavailable"
)

// Counters are the six figures shown on the admin dashboard.
type Counters struct {
	TotalDoctors        int64 `json:"total_doctors"`
	ApprovedDoctors     int64 `json:"approved_doctors"`
	TotalPatients       int64 `json:"total_patients"`
	TotalAppointments   int64 `json:"total_appointments"`
	PendingAppointments int64 `json:"pending_appointments"`
	TotalPredictions    int64 `json:"total_predictions"`
}

// ViewModel is what the dashboard renders. Counters are always present.
type ViewModel struct {
	Status      Status `json:"status"`
	Loading     bool   `json:"loading"`
	Unavailable bool   `json:"unavailable"`
	Refreshing  bool   `json:"refreshing"`
	Counters
	Error     string     `json:"error,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// Build maps a snapshot to counters. A nil snapshot means nothing has arrived yet: all
// counters are zero and the view is loading. Build is pure.
func Build(s *Snapshot) ViewModel {
	if s == nil {
		return ViewModel{Status: StatusLoading, Loading: true}
	}
	return ViewModel{Status: StatusReady, Counters: s.counters()}
}

// Unavailable is the view shown after a failed fetch: zero counters and the reason.
func Unavailable(err error) ViewModel {
	vm := ViewModel{Status: StatusUnavailable, Unavailable: true}
	if err != nil {
		vm.Error = err.Error()
	} else {
		vm.Error = ErrDataUnavailable.Error()
	}
	return vm
}
