package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Source performs the single "get aggregate statistics" operation.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Snapshot, error)

func (f SourceFunc) Fetch(ctx context.Context) (*Snapshot, error) { return f(ctx) }

const maxUpstreamBody = 1 << 20

// HTTPSource reads the statistics from the admin API.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// upstreamBody accepts a bare snapshot, a {"success":..,"data":..} envelope, or {"error":..}.
type upstreamBody struct {
	Snapshot
	Success *bool     `json:"success,omitempty"`
	Data    *Snapshot `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
}

func (s *HTTPSource) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrDataUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrDataUnavailable, err)
	}

	var body upstreamBody
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(body.Error)
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("upstream returned %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: malformed snapshot: %v", ErrDataUnavailable, decodeErr)
	}
	if body.Error != "" || (body.Success != nil && !*body.Success) {
		msg := body.Error
		if msg == "" {
			msg = "upstream reported failure"
		}
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, msg)
	}

	snap := body.Snapshot
	if body.Data != nil {
		snap = *body.Data
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Counter counts documents in a collection. *mongo.Database satisfies it through MongoCounter.
type Counter interface {
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
}

// MongoCounter counts with CountDocuments.
type MongoCounter struct {
	DB *mongo.Database
}

func (m MongoCounter) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return m.DB.Collection(collection).CountDocuments(ctx, filter)
}

// MongoSource computes the statistics straight from the healthcare collections.
// Unlike a best-effort dashboard, any failing count fails the whole snapshot.
type MongoSource struct {
	counter Counter
}

func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{counter: MongoCounter{DB: db}}
}

// NewMongoSourceWithCounter is used when counts come from something other than a live database.
func NewMongoSourceWithCounter(c Counter) *MongoSource {
	return &MongoSource{counter: c}
}

func (s *MongoSource) Fetch(ctx context.Context) (*Snapshot, error) {
	var doctors, approved, patients, appointments, pending, predictions *int64

	n := func(collection string, filter bson.M) (*int64, error) {
		v, err := s.counter.Count(ctx, collection, filter)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: count %s: %v", ErrDataUnavailable, collection, err)
		}
		return &v, nil
	}

	var err error
	if doctors, err = n("users", bson.M{"user_type": "doctor"}); err != nil {
		return nil, err
	}
	if approved, err = n("users", bson.M{"user_type": "doctor", "approved_by_admin": true}); err != nil {
		return nil, err
	}
	if patients, err = n("users", bson.M{"user_type": "patient"}); err != nil {
		return nil, err
	}
	if appointments, err = n("appointments", bson.M{}); err != nil {
		return nil, err
	}
	if pending, err = n("appointments", bson.M{"status": "pending"}); err != nil {
		return nil, err
	}
	if predictions, err = n("predictions", bson.M{}); err != nil {
		return nil, err
	}

	return &Snapshot{
		Doctors:      &DoctorCounts{Total: doctors, Approved: approved},
		Patients:     &PatientCounts{Total: patients},
		Appointments: &AppointmentCounts{Total: appointments, Pending: pending},
		Predictions:  &PredictionCounts{TotalPredictions: predictions},
	}, nil
}
