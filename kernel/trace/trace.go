package trace

// TraceLevel controls how much the driver keeps.
type TraceLevel string

const (
	// TraceLevelNone keeps nothing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents keeps only ticks with membership, fault or snapshot activity.
	TraceLevelEvents TraceLevel = "events"
	// TraceLevelTicks keeps every tick.
	TraceLevelTicks TraceLevel = "ticks"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	TraceLevelTicks:  true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// RunTrace collects tick records during a run.
type RunTrace struct {
	Level TraceLevel   `json:"level"`
	Ticks []TickRecord `json:"ticks"`
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(level TraceLevel) *RunTrace {
	if level == "" {
		level = TraceLevelNone
	}
	return &RunTrace{
		Level: level,
		Ticks: make([]TickRecord, 0),
	}
}

// Record appends rec if the trace level keeps it.
func (rt *RunTrace) Record(rec TickRecord) {
	switch rt.Level {
	case TraceLevelTicks:
		rt.Ticks = append(rt.Ticks, rec)
	case TraceLevelEvents:
		if len(rec.Membership) > 0 || len(rec.Faults) > 0 || rec.SnapshotDigest != "" {
			rt.Ticks = append(rt.Ticks, rec)
		}
	}
}
