package tracing

// Span attribute keys.
const (
	// Session attributes
	AttrSessionID = "session.id"

	// Value attributes
	AttrValueLen    = "value.len"
	AttrPlainLen    = "plain.len"
	AttrPartCount   = "parts.count"
	AttrMentionCnt  = "parts.mentions"
	AttrCaret       = "selection.caret"
	AttrSelectStart = "selection.start"
	AttrSelectEnd   = "selection.end"

	// Suggestion attributes
	AttrPartType     = "part_type.name"
	AttrTrigger      = "part_type.trigger"
	AttrKeyword      = "suggestion.keyword"
	AttrSuggestionID = "suggestion.id"

	// Cache attributes
	AttrCacheHit = "cache.hit"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanSetValue       = "session.set_value"
	SpanChangeText     = "session.change_text"
	SpanSetSelection   = "session.set_selection"
	SpanKeywords       = "session.keywords"
	SpanPickSuggestion = "session.pick_suggestion"
	SpanParse          = "mention.parse"
	SpanReconcile      = "mention.reconcile"
)

// Event names for span events.
const (
	EventCacheLookup        = "cache.lookup"
	EventMentionsDecayed    = "mentions.decayed"
	EventSuggestionRejected = "suggestion.rejected"
	EventPublished          = "event.published"
)
