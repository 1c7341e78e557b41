// Package attrsync implements a synchronized attribute store: a named set of
// typed slots mirrored to a remote peer over a Channel. Slots are declared up
// front with Descriptors; writes are validated against the descriptor before
// they land, and propagate to the channel either one by one or as a grouped
// batch that the peer observes atomically.
package attrsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vertexfoundry/cadviewer-bridge/internal/logging"
)

var (
	// ErrUnknownAttribute reports a write or read of a slot that was never
	// declared.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrReadOnlyAttribute reports a local write to a slot only the remote
	// peer may set.
	ErrReadOnlyAttribute = errors.New("attribute is read only")
	// ErrInvalidValue reports a value whose type or shape does not match the
	// slot's descriptor.
	ErrInvalidValue = errors.New("invalid attribute value")
	// ErrChannelUnbound reports an operation that needs a bound channel.
	ErrChannelUnbound = errors.New("no channel bound")
)

// Kind enumerates the value shapes a slot can hold.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool3
	KindFloat3
	KindFloat4
	KindStateMap
	KindAnyMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool3:
		return "bool triple"
	case KindFloat3:
		return "float triple"
	case KindFloat4:
		return "float quadruple"
	case KindStateMap:
		return "state map"
	case KindAnyMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Descriptor declares one synchronized slot.
type Descriptor struct {
	Name     string
	Kind     Kind
	Enum     []string // allowed values for KindString slots; empty means unrestricted
	Nullable bool     // slot may hold nil
	ReadOnly bool     // local writes rejected; remote writes accepted
	Default  any
}

// Update is one attribute write as observed by the channel and subscribers.
type Update struct {
	Name  string
	Value any
}

// Store holds the current value of every declared slot and mirrors committed
// writes to the bound channel. All methods are safe for concurrent use; the
// remote peer never observes a partially applied group.
type Store struct {
	mu      sync.RWMutex
	order   []string
	descs   map[string]Descriptor
	values  map[string]any
	channel Channel
	log     logging.Logger

	subs    map[int]func(Update)
	nextSub int
}

// StoreOption configures a Store at construction.
type StoreOption func(*Store)

// WithLogger sets the logger used for write and propagation diagnostics.
func WithLogger(log logging.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithChannel binds the outbound channel at construction instead of a later
// Bind call.
func WithChannel(ch Channel) StoreOption {
	return func(s *Store) { s.channel = ch }
}

// NewStore declares the given slots and initializes each to its default.
// Duplicate names and defaults that fail their own descriptor are
// construction errors.
func NewStore(descs []Descriptor, opts ...StoreOption) (*Store, error) {
	s := &Store{
		descs:  make(map[string]Descriptor, len(descs)),
		values: make(map[string]any, len(descs)),
		order:  make([]string, 0, len(descs)),
		subs:   make(map[int]func(Update)),
		log:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: descriptor with empty name", ErrInvalidValue)
		}
		if _, dup := s.descs[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate attribute %q", ErrInvalidValue, d.Name)
		}
		val, err := d.normalize(d.Default)
		if err != nil {
			return nil, fmt.Errorf("default for %q: %w", d.Name, err)
		}
		s.descs[d.Name] = d
		s.values[d.Name] = val
		s.order = append(s.order, d.Name)
	}
	return s, nil
}

// Bind attaches the outbound channel. Binding twice is an error; a Store is
// attached to at most one presentation surface for its lifetime.
func (s *Store) Bind(ch Channel) error {
	if ch == nil {
		return fmt.Errorf("%w: nil channel", ErrChannelUnbound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel != nil {
		return errors.New("channel already bound")
	}
	s.channel = ch
	if rs, ok := ch.(RemoteSource); ok {
		rs.OnRemoteUpdate(s.ApplyRemote)
	}
	return nil
}

// Set validates value against the slot's descriptor, commits it and pushes
// the write to the channel. Failed validation leaves the slot untouched.
func (s *Store) Set(ctx context.Context, name string, value any) error {
	s.mu.Lock()
	up, err := s.setLocked(name, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	ch := s.channel
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.log.Debug(ctx, "attribute set", logging.String("attribute", name))
	for _, fn := range subs {
		fn(up)
	}
	if ch == nil {
		return nil
	}
	return ch.PushAttributes(ctx, []Update{up})
}

func (s *Store) setLocked(name string, value any) (Update, error) {
	desc, ok := s.descs[name]
	if !ok {
		return Update{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	if desc.ReadOnly {
		return Update{}, fmt.Errorf("%w: %q", ErrReadOnlyAttribute, name)
	}
	norm, err := desc.normalize(value)
	if err != nil {
		return Update{}, err
	}
	s.values[name] = norm
	return Update{Name: name, Value: norm}, nil
}

// Group stages a set of writes that commit and propagate as one atomic unit.
// Obtain one through GroupWrites.
type Group struct {
	store  *Store
	staged []Update
	index  map[string]int
	priors map[string]any
}

// Set validates and applies one write inside the group. The value is visible
// to local readers immediately but reaches the channel only when the group
// commits.
func (g *Group) Set(name string, value any) error {
	s := g.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := g.priors[name]; !seen {
		g.priors[name] = s.values[name]
	}
	up, err := s.setLocked(name, value)
	if err != nil {
		return err
	}
	if i, ok := g.index[name]; ok {
		g.staged[i] = up
		return nil
	}
	g.index[name] = len(g.staged)
	g.staged = append(g.staged, up)
	return nil
}

// GroupWrites runs fn with a Group and, when fn succeeds, commits every
// staged write as a single channel push. When fn fails, every slot the group
// touched is restored to its prior value and nothing is pushed. The remote
// peer observes either the whole group or none of it.
func (s *Store) GroupWrites(ctx context.Context, fn func(g *Group) error) error {
	g := &Group{
		store:  s,
		index:  make(map[string]int),
		priors: make(map[string]any),
	}
	if err := fn(g); err != nil {
		s.mu.Lock()
		for name, prior := range g.priors {
			s.values[name] = prior
		}
		s.mu.Unlock()
		return err
	}
	if len(g.staged) == 0 {
		return nil
	}

	s.mu.RLock()
	ch := s.channel
	subs := s.subscribersLocked()
	s.mu.RUnlock()

	s.log.Debug(ctx, "attribute group committed", logging.Int("updates", len(g.staged)))
	for _, up := range g.staged {
		for _, fn := range subs {
			fn(up)
		}
	}
	if ch == nil {
		return nil
	}
	return ch.PushAttributes(ctx, g.staged)
}

// ApplyRemote records writes arriving from the remote peer. Read-only slots
// are writable on this path. Values that fail their descriptor are dropped
// with a warning rather than failing the transport.
func (s *Store) ApplyRemote(updates []Update) {
	applied := make([]Update, 0, len(updates))
	s.mu.Lock()
	for _, up := range updates {
		desc, ok := s.descs[up.Name]
		if !ok {
			s.log.Warn(context.Background(), "remote update for unknown attribute",
				logging.String("attribute", up.Name))
			continue
		}
		norm, err := desc.normalize(up.Value)
		if err != nil {
			s.log.Warn(context.Background(), "remote update dropped",
				logging.String("attribute", up.Name), logging.Err(err))
			continue
		}
		s.values[up.Name] = norm
		applied = append(applied, Update{Name: up.Name, Value: norm})
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	for _, up := range applied {
		for _, fn := range subs {
			fn(up)
		}
	}
}

// Subscribe registers fn to run after every committed write, local or remote.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Update)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) subscribersLocked() []func(Update) {
	subs := make([]func(Update), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// Get returns the current value of a slot. Map values are copied.
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Snapshot returns every slot in declaration order with copied values.
func (s *Store) Snapshot() []Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Update, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Update{Name: name, Value: copyValue(s.values[name])})
	}
	return out
}

// PushSnapshot pushes the full current state through the channel as one
// atomic group.
func (s *Store) PushSnapshot(ctx context.Context) error {
	s.mu.RLock()
	ch := s.channel
	s.mu.RUnlock()
	if ch == nil {
		return ErrChannelUnbound
	}
	return ch.PushAttributes(ctx, s.Snapshot())
}

// Typed readers. Each returns the zero value when the slot is unset, nil or
// of a different kind; the registry owner is expected to read slots with the
// kind it declared.

func (s *Store) Bool(name string) bool {
	v, _ := s.Get(name)
	b, _ := v.(bool)
	return b
}

func (s *Store) Int(name string) int {
	v, _ := s.Get(name)
	n, _ := v.(int)
	return n
}

func (s *Store) Float(name string) float64 {
	v, _ := s.Get(name)
	f, _ := v.(float64)
	return f
}

// FloatPtr reads a nullable float slot, nil when cleared.
func (s *Store) FloatPtr(name string) *float64 {
	v, _ := s.Get(name)
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func (s *Store) String(name string) string {
	v, _ := s.Get(name)
	str, _ := v.(string)
	return str
}

func (s *Store) Bool3(name string) [3]bool {
	v, _ := s.Get(name)
	b, _ := v.([3]bool)
	return b
}

// Float3 reads a nullable float-triple slot, nil when cleared.
func (s *Store) Float3(name string) *[3]float64 {
	v, _ := s.Get(name)
	t, ok := v.([3]float64)
	if !ok {
		return nil
	}
	return &t
}

// Float4 reads a nullable float-quadruple slot, nil when cleared.
func (s *Store) Float4(name string) *[4]float64 {
	v, _ := s.Get(name)
	q, ok := v.([4]float64)
	if !ok {
		return nil
	}
	return &q
}

func (s *Store) StateMap(name string) map[string][2]int {
	v, _ := s.Get(name)
	m, _ := v.(map[string][2]int)
	return m
}

func (s *Store) AnyMap(name string) map[string]any {
	v, _ := s.Get(name)
	m, _ := v.(map[string]any)
	return m
}

func copyValue(v any) any {
	switch m := v.(type) {
	case map[string][2]int:
		out := make(map[string][2]int, len(m))
		for k, e := range m {
			out[k] = e
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = e
		}
		return out
	default:
		return v
	}
}
