// Package session holds the editing state of one mention input: the raw
// value, its parts and plain text, and the selection. Every edit runs to
// completion under the session lock before the next one starts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/mentions/internal/cachemanager"
	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/mention"
	"github.com/zjrosen/mentions/internal/pubsub"
	"github.com/zjrosen/mentions/internal/span"
	"github.com/zjrosen/mentions/internal/textdiff"
	"github.com/zjrosen/mentions/internal/textutil"
	"github.com/zjrosen/mentions/internal/tracing"
)

// ErrOutOfSync is returned when the selection falls outside every part.
var ErrOutOfSync = errors.New("session: selection outside parts")

// DefaultParseTTL is how long tokenized values stay in the parse cache.
const DefaultParseTTL = cachemanager.DefaultExpiration

// Change is a snapshot of the session published after every edit.
type Change struct {
	SessionID string
	Version   int
	Value     string
	PlainText string
	Parts     []mention.Part
	Selection mention.Selection
	// Decayed counts mentions lost to the edit.
	Decayed int
}

// ActiveKeyword pairs a mention type with the keyword typed for it.
type ActiveKeyword struct {
	Type    *mention.MentionType
	Keyword string
}

// Option configures a Session.
type Option func(*Session)

// WithTracer records a span per operation.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Session) { s.tracer = tracer }
}

// WithParseCache stores tokenized values in cache for ttl.
func WithParseCache(cache cachemanager.CacheManager[string, mention.Result], ttl time.Duration) Option {
	return func(s *Session) {
		s.cache = cache
		s.ttl = ttl
	}
}

// WithoutParseCache tokenizes every value afresh.
func WithoutParseCache() Option {
	return func(s *Session) { s.skipCache = true }
}

// WithDiffer sets the differ used to reconcile text edits.
func WithDiffer(differ *textdiff.Differ) Option {
	return func(s *Session) { s.reconciler = mention.NewReconciler(differ) }
}

// WithBroker publishes changes on broker instead of a private one.
func WithBroker(broker *pubsub.Broker[Change]) Option {
	return func(s *Session) { s.broker = broker }
}

// Session is one editor's mention state.
type Session struct {
	id         string
	parser     *mention.Parser
	reconciler *mention.Reconciler
	tracer     trace.Tracer
	broker     *pubsub.Broker[Change]

	cache     cachemanager.CacheManager[string, mention.Result]
	ttl       time.Duration
	skipCache bool
	parse     *cachemanager.ReadThroughCache[string, mention.Result, string]
	loads     int

	mu      sync.Mutex
	value   string
	plain   string
	parts   []mention.Part
	sel     mention.Selection
	version int
}

// New creates an empty session tokenizing with parser.
func New(parser *mention.Parser, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		parser: parser,
		tracer: noop.NewTracerProvider().Tracer("session"),
		ttl:    DefaultParseTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reconciler == nil {
		s.reconciler = mention.NewReconciler(nil)
	}
	if s.broker == nil {
		s.broker = pubsub.NewBroker[Change]()
	}
	if s.cache == nil {
		s.cache = cachemanager.NewInMemoryCacheManager[string, mention.Result](
			"parse", DefaultParseTTL, cachemanager.DefaultCleanupInterval)
	}
	s.parse = cachemanager.NewReadThroughCache(s.cache, s.tokenize, s.skipCache)

	res := parser.Parse("")
	s.parts, s.plain = res.Parts, res.PlainText
	return s
}

func (s *Session) tokenize(_ context.Context, raw string) (mention.Result, error) {
	s.loads++
	return s.parser.Parse(raw), nil
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Types returns the part types the session tokenizes with.
func (s *Session) Types() []mention.PartType { return s.parser.Types() }

// Subscribe streams changes until ctx is cancelled or the session closes.
func (s *Session) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return s.broker.Subscribe(ctx)
}

// Close stops publishing and closes subscriber channels.
func (s *Session) Close() {
	s.broker.Close()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(0)
}

// Value returns the current raw value.
func (s *Session) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// PlainText returns the current plain text.
func (s *Session) PlainText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plain
}

// Selection returns the current selection.
func (s *Session) Selection() mention.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SetValue replaces the raw value and tokenizes it. The selection is clamped
// to the new plain text.
func (s *Session) SetValue(ctx context.Context, raw string) (Change, error) {
	var out Change
	err := tracing.Run(ctx, s.tracer, tracing.SpanSetValue, func(ctx context.Context, sp trace.Span) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
		hit, err := s.adopt(ctx, raw)
		if err != nil {
			return err
		}
		s.sel = clamp(s.sel, textutil.RuneLen(s.plain))
		s.version++
		out = s.snapshot(0)

		sp.SetAttributes(append(stateAttrs(out), attribute.Bool(tracing.AttrCacheHit, hit))...)
		log.Debug(log.CatSession, "value set",
			"session", s.id, "version", s.version, "parts", len(s.parts), "cache_hit", hit,
			"trace_id", tracing.TraceIDFromContext(ctx))
		return nil
	}, attribute.String(tracing.AttrSessionID, s.id))
	if err != nil {
		return Change{}, fmt.Errorf("set value: %w", err)
	}
	s.broker.Publish(pubsub.ValueSetEvent, out)
	return out, nil
}

// ChangeText folds an edit of the plain text into the value. Mentions the
// edit touched decay to plain text; the rest keep their metadata. The
// resulting value is tokenized again so typed markup becomes a mention.
func (s *Session) ChangeText(ctx context.Context, newPlain string) (Change, error) {
	var out Change
	err := tracing.Run(ctx, s.tracer, tracing.SpanChangeText, func(ctx context.Context, sp trace.Span) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
		if newPlain == s.plain {
			out = s.snapshot(0)
			return nil
		}

		before := countMentions(s.parts)
		value, reconciled := s.reconciler.Reconcile(s.parts, s.plain, newPlain)
		decayed := max(before-countMentions(reconciled), 0)

		if _, err := s.adopt(ctx, value); err != nil {
			return err
		}
		s.sel = clamp(s.sel, textutil.RuneLen(s.plain))
		s.version++
		out = s.snapshot(decayed)

		sp.SetAttributes(stateAttrs(out)...)
		if decayed > 0 {
			sp.AddEvent(tracing.EventMentionsDecayed, trace.WithAttributes(attribute.Int(tracing.AttrMentionCnt, decayed)))
		}
		log.Debug(log.CatSession, "text changed",
			"session", s.id, "version", s.version, "decayed", decayed,
			"trace_id", tracing.TraceIDFromContext(ctx))
		return nil
	}, attribute.String(tracing.AttrSessionID, s.id))
	if err != nil {
		return Change{}, fmt.Errorf("change text: %w", err)
	}
	s.broker.Publish(pubsub.TextChangedEvent, out)
	return out, nil
}

// SetSelection moves the caret or selection, clamped to the plain text.
func (s *Session) SetSelection(sel mention.Selection) Change {
	s.mu.Lock()
	s.sel = clamp(sel, textutil.RuneLen(s.plain))
	out := s.snapshot(0)
	s.mu.Unlock()

	s.broker.Publish(pubsub.SelectionChangedEvent, out)
	return out
}

// Keywords returns the active keyword per trigger at the current selection.
func (s *Session) Keywords() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mention.Keywords(s.parts, s.plain, s.sel, s.parser.Types())
}

// SuggestionTypes returns the mention types rendering their suggestions at
// pos that have an active keyword, with that keyword.
func (s *Session) SuggestionTypes(pos mention.RenderPosition) []ActiveKeyword {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := s.parser.Types()
	keywords := mention.Keywords(s.parts, s.plain, s.sel, types)
	var out []ActiveKeyword
	for _, mt := range mention.MentionTypesAt(types, pos) {
		if kw, ok := keywords[mt.Trigger]; ok {
			out = append(out, ActiveKeyword{Type: mt, Keyword: kw})
		}
	}
	return out
}

// PickSuggestion replaces the keyword at the caret with a mention of sug and
// leaves the caret after it.
func (s *Session) PickSuggestion(ctx context.Context, mt *mention.MentionType, sug mention.Suggestion) (Change, error) {
	var out Change
	err := tracing.Run(ctx, s.tracer, tracing.SpanPickSuggestion, func(ctx context.Context, sp trace.Span) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
		comp, ok := mention.ComposeSuggestion(s.parts, mt, s.plain, s.sel, sug)
		if !ok {
			sp.AddEvent(tracing.EventSuggestionRejected,
				trace.WithAttributes(attribute.String(tracing.AttrSuggestionID, sug.ID)))
			return ErrOutOfSync
		}
		if _, err := s.adopt(ctx, comp.Value); err != nil {
			return err
		}
		s.sel = clamp(span.At(comp.Caret), textutil.RuneLen(s.plain))
		s.version++
		out = s.snapshot(0)

		sp.SetAttributes(append(stateAttrs(out),
			attribute.String(tracing.AttrPartType, mt.Name),
			attribute.String(tracing.AttrTrigger, mt.Trigger),
			attribute.String(tracing.AttrSuggestionID, sug.ID))...)
		log.Debug(log.CatSession, "suggestion inserted",
			"session", s.id, "type", mt.Name, "id", sug.ID, "caret", comp.Caret,
			"trace_id", tracing.TraceIDFromContext(ctx))
		return nil
	}, attribute.String(tracing.AttrSessionID, s.id))
	if err != nil {
		return Change{}, fmt.Errorf("pick suggestion: %w", err)
	}
	s.broker.Publish(pubsub.SuggestionInsertedEvent, out)
	return out, nil
}

// adopt tokenizes raw through the parse cache and installs the result. It
// reports whether the cache served it. Must be called with mu held.
func (s *Session) adopt(ctx context.Context, raw string) (bool, error) {
	loads := s.loads
	res, err := s.parse.GetWithRefresh(ctx, raw, raw, s.ttl)
	if err != nil {
		return false, err
	}
	s.value = raw
	s.parts = append([]mention.Part(nil), res.Parts...)
	s.plain = res.PlainText
	return s.loads == loads, nil
}

// snapshot must be called with mu held.
func (s *Session) snapshot(decayed int) Change {
	return Change{
		SessionID: s.id,
		Version:   s.version,
		Value:     s.value,
		PlainText: s.plain,
		Parts:     append([]mention.Part(nil), s.parts...),
		Selection: s.sel,
		Decayed:   decayed,
	}
}

func stateAttrs(c Change) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(tracing.AttrValueLen, textutil.RuneLen(c.Value)),
		attribute.Int(tracing.AttrPlainLen, textutil.RuneLen(c.PlainText)),
		attribute.Int(tracing.AttrPartCount, len(c.Parts)),
		attribute.Int(tracing.AttrMentionCnt, countMentions(c.Parts)),
		attribute.Int(tracing.AttrSelectStart, c.Selection.Start),
		attribute.Int(tracing.AttrSelectEnd, c.Selection.End),
	}
}

func countMentions(parts []mention.Part) int {
	n := 0
	for _, p := range parts {
		if p.IsMention() {
			n++
		}
	}
	return n
}

func clamp(sel mention.Selection, n int) mention.Selection {
	return span.New(min(max(sel.Start, 0), n), min(max(sel.End, 0), n))
}
