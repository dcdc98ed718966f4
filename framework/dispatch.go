package framework

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ToolSpec is the static catalog entry for one tool. Specs are read-only at
// runtime and shared by reference across concurrent runs.
type ToolSpec struct {
	Name        string
	Description string
	Usage       string
}

// Handler executes one tool invocation. Handlers return observation text and
// never errors: anything that goes wrong is rendered into the returned string
// so the driving model can adapt.
type Handler func(ctx context.Context, arg string) string

// PolicyFunc is an optional host-injected veto on top of the built-in
// blocklist. A non-nil error blocks the operation.
type PolicyFunc func(operation string, args string) error

// DefaultObservationLimit clamps handler output before it is stored as an
// observation, keeping prompts bounded.
const DefaultObservationLimit = 2000

// DefaultToolTimeout bounds a single handler invocation.
const DefaultToolTimeout = 30 * time.Second

type route struct {
	spec    ToolSpec
	pattern *regexp.Regexp
	handler Handler
}

// Dispatcher sanitizes, matches, and routes action strings to registered tool
// handlers. Registration happens once at construction time; after that the
// dispatcher is read-only and safe for concurrent Dispatch calls.
type Dispatcher struct {
	routes           []route
	policy           PolicyFunc
	observationLimit int
	toolTimeout      time.Duration
}

// DispatcherOption customizes a Dispatcher at construction.
type DispatcherOption func(*Dispatcher)

// WithPolicy installs a host security policy consulted before shell and
// file-write style operations.
func WithPolicy(policy PolicyFunc) DispatcherOption {
	return func(d *Dispatcher) { d.policy = policy }
}

// WithObservationLimit overrides the observation clamp.
func WithObservationLimit(limit int) DispatcherOption {
	return func(d *Dispatcher) {
		if limit > 0 {
			d.observationLimit = limit
		}
	}
}

// WithToolTimeout overrides the per-handler timeout.
func WithToolTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.toolTimeout = timeout
		}
	}
}

// NewDispatcher builds an empty dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		observationLimit: DefaultObservationLimit,
		toolTimeout:      DefaultToolTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a tool under a verb grammar: the verb at the start of the
// action followed by a quoted or bare argument tail. Routes are matched in
// registration order; first match wins.
func (d *Dispatcher) Register(spec ToolSpec, handler Handler) {
	pattern := regexp.MustCompile(`(?is)^\s*` + regexp.QuoteMeta(spec.Name) + `\s*(?::|\s|$)\s*(.*)$`)
	d.routes = append(d.routes, route{spec: spec, pattern: pattern, handler: handler})
}

// Policy exposes the injected policy hook so handlers can apply it as a
// second layer of defense.
func (d *Dispatcher) Policy() PolicyFunc { return d.policy }

// Specs returns the catalog sorted by name for prompt rendering.
func (d *Dispatcher) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(d.routes))
	for _, r := range d.routes {
		specs = append(specs, r.spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Dispatch routes an action string to its handler and returns the observation.
// It never returns an error: sanitizer vetoes, policy vetoes, unknown verbs,
// and handler panics all become descriptive observation strings.
func (d *Dispatcher) Dispatch(ctx context.Context, action string) (observation string) {
	defer func() {
		if r := recover(); r != nil {
			observation = fmt.Sprintf("Tool error: %v", r)
		}
		observation = d.clamp(observation)
	}()
	sanitized, ok := Sanitize(action)
	if !ok {
		return sanitized
	}
	trimmed := strings.TrimSpace(sanitized)
	for _, r := range d.routes {
		m := r.pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		if d.policy != nil {
			if err := d.policy(r.spec.Name, m[1]); err != nil {
				return BlockedPrefix + err.Error()
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, d.toolTimeout)
		defer cancel()
		return r.handler(callCtx, unquote(m[1]))
	}
	return d.unknownToolListing()
}

// unknownToolListing tells the model what it may call instead.
func (d *Dispatcher) unknownToolListing() string {
	names := make([]string, 0, len(d.routes))
	for _, spec := range d.Specs() {
		names = append(names, spec.Name)
	}
	return "Unknown tool. Available tools: " + strings.Join(names, ", ")
}

func (d *Dispatcher) clamp(s string) string {
	if len(s) <= d.observationLimit {
		return s
	}
	return s[:d.observationLimit] + fmt.Sprintf("\n... [truncated, %d bytes total]", len(s))
}

// unquote strips one pair of surrounding single or double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
