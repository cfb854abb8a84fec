package reduce

// EventKind is what a trace event records.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventBeta
	EventUpdate
	EventShare
	EventProbe
	EventBlackHole
)

func (k EventKind) String() string {
	switch k {
	case EventBeta:
		return "beta"
	case EventUpdate:
		return "update"
	case EventShare:
		return "share"
	case EventProbe:
		return "probe"
	case EventBlackHole:
		return "black-hole"
	default:
		return "unknown"
	}
}

// TraceEvent is one recorded machine step.
type TraceEvent struct {
	Step  uint64
	Kind  EventKind
	Thunk Handle
	Stack int
	Arena int
}

// Stats holds reduction statistics.
type Stats struct {
	TotalReductions uint64 // beta steps
	Updates         uint64 // thunks overwritten with their value
	SharedHits      uint64 // forced thunks that were already evaluated
	Thunks          uint64
	EnvCells        uint64
	Probes          uint64
}

// EnableTrace records the first capacity events.
func (m *Machine) EnableTrace(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	m.traceBuf = make([]TraceEvent, 0, capacity)
	m.traceOn = true
}

// DisableTrace stops recording; TraceSnapshot then returns nil.
func (m *Machine) DisableTrace() {
	m.traceOn = false
}

// TraceSnapshot returns a copy of the recorded events, or nil when
// tracing is off.
func (m *Machine) TraceSnapshot() []TraceEvent {
	if !m.traceOn {
		return nil
	}
	res := make([]TraceEvent, len(m.traceBuf))
	copy(res, m.traceBuf)
	return res
}

func (m *Machine) recordTrace(kind EventKind, h Handle, stack int) {
	if !m.traceOn || len(m.traceBuf) == cap(m.traceBuf) {
		return
	}
	m.traceBuf = append(m.traceBuf, TraceEvent{
		Step:  m.stats.TotalReductions,
		Kind:  kind,
		Thunk: h,
		Stack: stack,
		Arena: len(m.thunks) + len(m.envs),
	})
}
