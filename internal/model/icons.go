package model

// Selector glyphs. IconCursor marks the highlighted candidate;
// IconSelected and IconAborted report how the selection ended.
const (
	IconCursor   = "›"
	IconBlank    = " "
	IconSelected = "✓"
	IconAborted  = "✗"
)
