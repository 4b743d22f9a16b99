package lifecycle

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/julianstephens/tracklit/internal/metrics"
	"github.com/julianstephens/tracklit/internal/utils"
)

// Clock returns the current instant. It is read once per operation.
type Clock func() time.Time

// Engine owns a Store and serializes every operation on it through one mutex.
// Operations never perform I/O; Sync is the only path to a provider.
type Engine struct {
	mu       sync.Mutex
	store    *Store
	clock    Clock
	loc      *time.Location
	log      *log.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	newID    func() string
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLocation sets the timezone used to derive "today".
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithIDGenerator replaces the UUIDv4 generator used for new entities.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

func New(store *Store, opts ...Option) *Engine {
	if store == nil {
		store = NewStore()
	}
	e := &Engine{
		store:    store,
		clock:    time.Now,
		loc:      time.Local,
		log:      log.New(io.Discard),
		validate: newValidator(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync flushes journaled changes to sink. It holds the engine lock for the
// duration, so no operation observes a half-written state.
func (e *Engine) Sync(sink Sink) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.store.Pending() {
		return nil
	}
	if err := e.store.flush(sink); err != nil {
		e.log.Error("sync failed", "error", err)
		return fmt.Errorf("failed to sync store: %w", err)
	}
	e.log.Debug("store synced")
	return nil
}

// Pending reports whether there are changes not yet written by Sync.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Pending()
}

// now returns the operation's instant together with today's date in the
// engine's location.
func (e *Engine) now() (time.Time, string) {
	now := e.clock()
	return now, utils.DayOf(now, e.loc)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkInput runs struct validation and converts the first failure into an
// InvalidInput error.
func (e *Engine) checkInput(entity string, input any) error {
	err := e.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return invalidInput(entity, "", "%s", describeFieldError(fe))
	}
	return invalidInput(entity, "", "%v", err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
