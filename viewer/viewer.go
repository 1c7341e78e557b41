// Package viewer implements the command/state proxy for a browser-side 3D
// CAD viewer. A Viewer owns the synchronized attribute set the front-end
// renders from, validates and batches writes so the front-end observes
// coherent scene updates, and forwards method invocations as fire-and-forget
// JSON messages with per-instance monotonically increasing ids.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vertexfoundry/cadviewer-bridge/attrsync"
	"github.com/vertexfoundry/cadviewer-bridge/internal/logging"
)

// SerializeFunc converts domain geometry objects into the JSON blob the
// front-end renders. The default marshals with encoding/json; embedders with
// richer geometry models supply their own.
type SerializeFunc func(shapes any) ([]byte, error)

// MetricsRecorder receives bridge activity counts. Implementations must be
// safe for concurrent use.
type MetricsRecorder interface {
	ObserveSubmit(d time.Duration, updateCount int)
	IncMethodMessage(methodRoot string)
	IncAttributeWrite(attribute string)
	IncValidationFailure(attribute string)
	SetSceneCounts(states, tracks int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSubmit(time.Duration, int) {}
func (noopMetrics) IncMethodMessage(string)          {}
func (noopMetrics) IncAttributeWrite(string)         {}
func (noopMetrics) IncValidationFailure(string)      {}
func (noopMetrics) SetSceneCounts(int, int)          {}

// Viewer is the proxy for one front-end viewer instance. Construct with New,
// then Attach a channel before submitting scenes or invoking methods.
type Viewer struct {
	id        string
	log       logging.Logger
	metrics   MetricsRecorder
	notify    func(string)
	serialize SerializeFunc

	store *attrsync.Store
	msgID atomic.Int64

	mu        sync.Mutex
	channel   attrsync.Channel
	tracks    []AnimationTrack
	savedClip bool

	cadWidth  int
	height    int
	treeWidth int
	theme     string
	tools     bool
}

// Option configures a Viewer at construction.
type Option func(*Viewer)

// WithSize sets the CAD canvas width and height in pixels. Width below 640
// fails construction.
func WithSize(width, height int) Option {
	return func(v *Viewer) {
		v.cadWidth = width
		v.height = height
	}
}

// WithTreeWidth sets the navigation tree width in pixels. Below 240 fails
// construction.
func WithTreeWidth(width int) Option {
	return func(v *Viewer) { v.treeWidth = width }
}

// WithTheme sets the front-end theme.
func WithTheme(theme string) Option {
	return func(v *Viewer) { v.theme = theme }
}

// WithTools toggles the front-end tool bar.
func WithTools(enabled bool) Option {
	return func(v *Viewer) { v.tools = enabled }
}

// WithLogger sets the structured logger.
func WithLogger(log logging.Logger) Option {
	return func(v *Viewer) {
		if log != nil {
			v.log = log
		}
	}
}

// WithMetrics sets the activity recorder.
func WithMetrics(rec MetricsRecorder) Option {
	return func(v *Viewer) {
		if rec != nil {
			v.metrics = rec
		}
	}
}

// WithNotices routes soft policy notices to fn in addition to the log.
func WithNotices(fn func(message string)) Option {
	return func(v *Viewer) { v.notify = fn }
}

// WithShapeSerializer replaces the geometry serializer.
func WithShapeSerializer(fn SerializeFunc) Option {
	return func(v *Viewer) {
		if fn != nil {
			v.serialize = fn
		}
	}
}

// WithID overrides the generated viewer instance id.
func WithID(id string) Option {
	return func(v *Viewer) {
		if id != "" {
			v.id = id
		}
	}
}

// New constructs a detached Viewer with every slot at its default.
func New(opts ...Option) (*Viewer, error) {
	v := &Viewer{
		id:        uuid.NewString(),
		log:       logging.Noop(),
		metrics:   noopMetrics{},
		serialize: func(shapes any) ([]byte, error) { return json.Marshal(shapes) },
		cadWidth:  800,
		height:    600,
		treeWidth: 240,
		theme:     "light",
		tools:     true,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.cadWidth < 640 {
		return nil, fmt.Errorf("%w: cad_width %d is below the minimum of 640", ErrInvalidOption, v.cadWidth)
	}
	if v.treeWidth < 240 {
		return nil, fmt.Errorf("%w: tree_width %d is below the minimum of 240", ErrInvalidOption, v.treeWidth)
	}
	v.log = v.log.With(logging.String("viewer_id", v.id))

	store, err := attrsync.NewStore(
		registryDescriptors(v.cadWidth, v.height, v.treeWidth, v.theme, v.tools),
		attrsync.WithLogger(v.log),
	)
	if err != nil {
		return nil, err
	}
	v.store = store
	store.Subscribe(func(up attrsync.Update) { v.metrics.IncAttributeWrite(up.Name) })
	return v, nil
}

// ID returns the viewer instance id used for log and trace correlation.
func (v *Viewer) ID() string { return v.id }

// Attach binds the presentation channel and pushes the full attribute
// snapshot so the front-end starts from the viewer's current state. A Viewer
// attaches at most once.
func (v *Viewer) Attach(ctx context.Context, ch attrsync.Channel) error {
	if ch == nil {
		return errors.New("attach: nil channel")
	}
	if err := v.store.Bind(ch); err != nil {
		return err
	}
	v.mu.Lock()
	v.channel = ch
	v.mu.Unlock()

	ctx = logging.ContextWithViewerID(ctx, v.id)
	if err := v.store.PushSnapshot(ctx); err != nil {
		return fmt.Errorf("push initial snapshot: %w", err)
	}
	v.log.Info(ctx, "viewer attached",
		logging.Int("cad_width", v.cadWidth),
		logging.Int("height", v.height),
		logging.String("theme", v.theme))
	return nil
}

// Attached reports whether a channel is bound.
func (v *Viewer) Attached() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.channel != nil
}

func (v *Viewer) channelOrErr() (attrsync.Channel, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.channel == nil {
		return nil, ErrNotAttached
	}
	return v.channel, nil
}

// noticef reports a soft policy override: logged at warn level and forwarded
// to the configured notice hook. Processing continues with adjusted values.
func (v *Viewer) noticef(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	v.log.Warn(ctx, "policy notice", logging.String("notice", msg))
	if v.notify != nil {
		v.notify(msg)
	}
}

// set writes one slot through the store, counting validation failures.
func (v *Viewer) set(ctx context.Context, name string, value any) error {
	if _, err := v.channelOrErr(); err != nil {
		return err
	}
	if err := v.store.Set(ctx, name, value); err != nil {
		if errors.Is(err, attrsync.ErrInvalidValue) {
			v.metrics.IncValidationFailure(name)
		}
		return err
	}
	return nil
}
