package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod  = "method"
	AttrPath    = "path"
	AttrStatus  = "status"
	AttrOp      = "op"
	AttrSide    = "side"
	AttrApplied = "applied"
	AttrTopic   = "topic"
)
