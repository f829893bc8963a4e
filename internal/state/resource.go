package state

import (
	"context"
	"sync"
	"time"

	"shiftly/internal/metrics"

	"github.com/rs/zerolog"
)

// Phase is the fetch phase of a screen
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseError   Phase = "error"
)

// Resource is the fetch state of one screen. Data is replaced wholesale by
// every successful fetch and kept across failures.
type Resource[T any] struct {
	Phase Phase `json:"phase"`
	Data  *T    `json:"data,omitempty"`
	// HasStaleData is set while previously loaded data is shown during a
	// refresh or after a failed one.
	HasStaleData bool `json:"has_stale_data"`
	// IsLoading is set only when there is nothing to show yet.
	IsLoading bool `json:"is_loading"`
	// ShowError is the error banner. It stays up until dismissed.
	ShowError    bool       `json:"show_error"`
	ErrorMessage string     `json:"error_message,omitempty"`
	LoadedAt     *time.Time `json:"loaded_at,omitempty"`
}

func (r *Resource[T]) begin() {
	r.Phase = PhaseLoading
	r.HasStaleData = r.Data != nil
	r.IsLoading = r.Data == nil
}

func (r *Resource[T]) succeed(data *T) {
	now := time.Now().UTC()
	r.Phase = PhaseLoaded
	r.Data = data
	r.HasStaleData = false
	r.IsLoading = false
	r.LoadedAt = &now
}

func (r *Resource[T]) fail(err error) {
	r.Phase = PhaseError
	r.HasStaleData = r.Data != nil
	r.IsLoading = false
	r.raise(err)
}

// raise shows the banner without touching the fetch phase
func (r *Resource[T]) raise(err error) {
	r.ShowError = true
	r.ErrorMessage = err.Error()
}

func (r *Resource[T]) dismiss() {
	r.ShowError = false
	r.ErrorMessage = ""
}

// loader runs the shared refresh protocol for a Resource. Transitions happen
// under mu, so completions apply one at a time in the order they finish.
type loader[T any] struct {
	name    string
	logger  zerolog.Logger
	metrics *metrics.Metrics

	mu  sync.Mutex
	res Resource[T]
}

func newLoader[T any](name string, deps Deps) *loader[T] {
	return &loader[T]{
		name:    name,
		logger:  deps.Logger.With().Str("controller", name).Logger(),
		metrics: deps.Metrics,
		res:     Resource[T]{Phase: PhaseIdle},
	}
}

// refresh fetches and applies the result. Overlapping calls are not
// cancelled; whichever completes last wins.
func (l *loader[T]) refresh(ctx context.Context, fetch func(context.Context) (*T, error)) (*T, error) {
	l.mu.Lock()
	l.res.begin()
	l.mu.Unlock()

	start := time.Now()
	data, err := fetch(ctx)
	l.metrics.ObserveRefresh(l.name, err, time.Since(start))

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.res.fail(err)
		l.logger.Warn().Err(err).Msg("Refresh failed")
		return nil, err
	}
	l.res.succeed(data)
	return data, nil
}

// raise surfaces an intent failure on the banner
func (l *loader[T]) raise(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.res.raise(err)
}

func (l *loader[T]) dismissError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.res.dismiss()
}

func (l *loader[T]) resource() Resource[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.res
}

func (l *loader[T]) data() *T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.res.Data
}
