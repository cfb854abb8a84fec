package reduce

import (
	"context"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/vic/goblc/pkg/lambda"
)

var log = commonlog.GetLogger("blc.reduce")

// Handle addresses a thunk in a Machine's arena.
type Handle int32

type envRef int32

const emptyEnv envRef = -1

type envCell struct {
	h    Handle
	next envRef
}

type valueKind uint8

const (
	valClosure valueKind = iota + 1
	valNeutral
)

// value is a weak head normal form: either a closure (an abstraction
// with its environment) or a neutral spine headed by a variable that has
// no value, i.e. a binder read back under or an opaque probe.
type value struct {
	kind  valueKind
	body  lambda.Term
	env   envRef
	head  int // binder level, or probe id when probe is set
	probe bool
	args  []Handle
}

type thunkState uint8

const (
	thunkPending thunkState = iota
	thunkBusy
	thunkDone
)

type thunk struct {
	code  lambda.Term
	env   envRef
	state thunkState
	val   value
}

type frame struct {
	h      Handle
	update bool
}

// Options configures a Machine.
type Options struct {
	Limits Limits
	// AllowFree turns the free variables of loaded terms into neutral
	// variables instead of failing with ErrMalformedTerm.
	AllowFree bool
}

// Machine is a lazy graph reducer. Terms are loaded into an arena of
// thunks; arguments are passed unevaluated and every thunk is evaluated
// at most once, so an argument duplicated by substitution is shared
// rather than copied. Evaluation is leftmost-outermost: only the head of
// an application is ever forced.
//
// A Machine is single-threaded and its arena lives until the Machine is
// dropped.
type Machine struct {
	ctx    context.Context
	limits Limits
	free   bool

	thunks []thunk
	envs   []envCell

	state    State
	err      error
	probeSeq int

	stats Stats

	traceBuf []TraceEvent
	traceOn  bool
}

func NewMachine(ctx context.Context, opts Options) *Machine {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Machine{
		ctx:    ctx,
		limits: opts.Limits,
		free:   opts.AllowFree,
		state:  StateReducing,
	}
}

// State reports the session state.
func (m *Machine) State() State { return m.state }

// Err returns the error that stopped the machine, if any.
func (m *Machine) Err() error { return m.err }

// GetStats returns the counters so far, with the current arena size.
func (m *Machine) GetStats() Stats {
	s := m.stats
	s.Thunks = uint64(len(m.thunks))
	s.EnvCells = uint64(len(m.envs))
	return s
}

// Finish marks the session as normalized once the caller has consumed
// everything it needs.
func (m *Machine) Finish() {
	if m.err == nil {
		m.state = StateNormalized
	}
}

func (m *Machine) fail(state State, err error) error {
	if m.err == nil {
		m.state = state
		m.err = err
		log.Debugf("machine stopped in state %v: %v", state, err)
	}
	return m.err
}

func (m *Machine) malformed(format string, args ...any) error {
	return m.fail(StateMalformed, fmt.Errorf("%w: %s", ErrMalformedTerm, fmt.Sprintf(format, args...)))
}

func (m *Machine) diverged(kind LimitKind, limit uint64, cause error) error {
	return m.fail(StateDiverged, &LimitError{Kind: kind, Limit: limit, Steps: m.stats.TotalReductions, Err: cause})
}

// tick accounts for one beta step and enforces every bound.
func (m *Machine) tick(stack int) error {
	m.stats.TotalReductions++
	if m.traceOn {
		m.recordTrace(EventBeta, -1, stack)
	}
	if limit := m.limits.MaxSteps; limit > 0 && m.stats.TotalReductions > limit {
		return m.diverged(LimitSteps, limit, nil)
	}
	if limit := m.limits.MaxNodes; limit > 0 && uint64(len(m.thunks)+len(m.envs)) > limit {
		return m.diverged(LimitNodes, limit, nil)
	}
	if err := m.ctx.Err(); err != nil {
		return m.diverged(LimitContext, 0, err)
	}
	return nil
}

func (m *Machine) alloc(t thunk) Handle {
	m.thunks = append(m.thunks, t)
	return Handle(len(m.thunks) - 1)
}

func (m *Machine) bind(h Handle, env envRef) envRef {
	m.envs = append(m.envs, envCell{h: h, next: env})
	return envRef(len(m.envs) - 1)
}

func (m *Machine) lookup(env envRef, index int) (Handle, error) {
	for i := 0; i < index && env != emptyEnv; i++ {
		env = m.envs[env].next
	}
	if env == emptyEnv {
		return 0, m.malformed("free variable %d", index)
	}
	return m.envs[env].h, nil
}

// neutral allocates an evaluated thunk holding a bare variable.
func (m *Machine) neutral(level int, probe bool) Handle {
	return m.alloc(thunk{state: thunkDone, val: value{kind: valNeutral, head: level, probe: probe}})
}

// argument makes a thunk for an application argument. Variables reuse
// the thunk they are bound to, abstractions are already values.
func (m *Machine) argument(arg lambda.Term, env envRef) (Handle, error) {
	switch a := arg.(type) {
	case lambda.Var:
		return m.lookup(env, a.Index)
	case lambda.Abs:
		return m.alloc(thunk{state: thunkDone, val: value{kind: valClosure, body: a.Body, env: env}}), nil
	default:
		return m.alloc(thunk{code: arg, env: env}), nil
	}
}

// Load places t in the arena without evaluating it.
func (m *Machine) Load(t lambda.Term) (Handle, error) {
	if m.err != nil {
		return 0, m.err
	}
	env := emptyEnv
	if m.free {
		// Free index i reads back as i at depth 0.
		for i := lambda.FreeDepth(t) - 1; i >= 0; i-- {
			env = m.bind(m.neutral(-(i+1), false), env)
		}
	}
	return m.alloc(thunk{code: t, env: env}), nil
}

// Apply builds the lazy application fn args[0] ... args[n-1].
func (m *Machine) Apply(fn Handle, args ...Handle) Handle {
	env := m.bind(fn, emptyEnv)
	for _, a := range args {
		env = m.bind(a, env)
	}
	n := len(args)
	var code lambda.Term = lambda.Var{Index: n}
	for i := range args {
		code = lambda.App{Fun: code, Arg: lambda.Var{Index: n - 1 - i}}
	}
	return m.alloc(thunk{code: code, env: env})
}

// Force evaluates h to weak head normal form.
func (m *Machine) Force(h Handle) error {
	_, err := m.force(h)
	return err
}

func (m *Machine) force(h Handle) (value, error) {
	if m.err != nil {
		return value{}, m.err
	}
	th := &m.thunks[h]
	switch th.state {
	case thunkDone:
		return th.val, nil
	case thunkBusy:
		m.recordTrace(EventBlackHole, h, 0)
		return value{}, m.diverged(LimitBlackHole, 0, nil)
	}
	th.state = thunkBusy
	return m.eval(th.code, th.env, []frame{{h: h, update: true}})
}

func (m *Machine) update(h Handle, v value, stack int) {
	th := &m.thunks[h]
	th.val = v
	th.state = thunkDone
	th.code = nil
	m.stats.Updates++
	if m.traceOn {
		m.recordTrace(EventUpdate, h, stack)
	}
}

// eval runs the machine on code in env against stack until the stack is
// exhausted, returning the weak head normal form. Arguments sit on the
// stack above update frames for the thunks being evaluated.
func (m *Machine) eval(code lambda.Term, env envRef, stack []frame) (value, error) {
	for {
		var v value
		switch t := code.(type) {
		case lambda.App:
			h, err := m.argument(t.Arg, env)
			if err != nil {
				return value{}, err
			}
			stack = append(stack, frame{h: h})
			code = t.Fun
			continue

		case lambda.Abs:
			if n := len(stack); n > 0 && !stack[n-1].update {
				if err := m.tick(n); err != nil {
					return value{}, err
				}
				env = m.bind(stack[n-1].h, env)
				stack = stack[:n-1]
				code = t.Body
				continue
			}
			v = value{kind: valClosure, body: t.Body, env: env}

		case lambda.Var:
			h, err := m.lookup(env, t.Index)
			if err != nil {
				return value{}, err
			}
			th := &m.thunks[h]
			switch th.state {
			case thunkPending:
				th.state = thunkBusy
				stack = append(stack, frame{h: h, update: true})
				code, env = th.code, th.env
				continue
			case thunkBusy:
				m.recordTrace(EventBlackHole, h, len(stack))
				return value{}, m.diverged(LimitBlackHole, 0, nil)
			}
			m.stats.SharedHits++
			if m.traceOn {
				m.recordTrace(EventShare, h, len(stack))
			}
			v = th.val

		default:
			return value{}, m.malformed("unexpected term %T", code)
		}

		// Unwind: fill update frames, let neutral heads absorb their
		// arguments, stop when a closure meets an argument.
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.update {
				m.update(top.h, v, len(stack))
				stack = stack[:len(stack)-1]
				continue
			}
			if v.kind == valClosure {
				break
			}
			args := make([]Handle, len(v.args), len(v.args)+len(stack))
			copy(args, v.args)
			for len(stack) > 0 && !stack[len(stack)-1].update {
				args = append(args, stack[len(stack)-1].h)
				stack = stack[:len(stack)-1]
			}
			v = value{kind: valNeutral, head: v.head, probe: v.probe, args: args}
		}
		if len(stack) == 0 {
			return v, nil
		}

		n := len(stack)
		if err := m.tick(n); err != nil {
			return value{}, err
		}
		env = m.bind(stack[n-1].h, v.env)
		stack = stack[:n-1]
		code = v.body
	}
}

// apply applies an evaluated value to argument thunks.
func (m *Machine) apply(v value, args []Handle) (value, error) {
	if len(args) == 0 {
		return v, nil
	}
	if v.kind == valNeutral {
		spine := make([]Handle, 0, len(v.args)+len(args))
		spine = append(append(spine, v.args...), args...)
		return value{kind: valNeutral, head: v.head, probe: v.probe, args: spine}, nil
	}
	stack := make([]frame, 0, len(args)-1)
	for i := len(args) - 1; i >= 1; i-- {
		stack = append(stack, frame{h: args[i]})
	}
	if err := m.tick(len(stack) + 1); err != nil {
		return value{}, err
	}
	return m.eval(v.body, m.bind(args[0], v.env), stack)
}

// ProbeResult describes the weak head normal form of a term applied to
// opaque probe arguments.
type ProbeResult struct {
	// Head is the position of the probe heading the result, or -1.
	Head int
	// Args is the spine applied to the head.
	Args []Handle
	// Probes are the handles of the probe arguments, in order.
	Probes []Handle
}

// Probe applies h to n fresh opaque arguments and evaluates the result
// to weak head normal form. This decides data shapes (booleans, list
// cells) by behavior, reducing no further than the head.
func (m *Machine) Probe(h Handle, n int) (ProbeResult, error) {
	v, err := m.force(h)
	if err != nil {
		return ProbeResult{}, err
	}
	m.stats.Probes++
	if m.traceOn {
		m.recordTrace(EventProbe, h, 0)
	}
	first := m.probeSeq
	m.probeSeq += n
	probes := make([]Handle, n)
	for i := range probes {
		probes[i] = m.neutral(first+i, true)
	}
	w, err := m.apply(v, probes)
	if err != nil {
		return ProbeResult{}, err
	}
	res := ProbeResult{Head: -1, Probes: probes}
	if w.kind == valNeutral && w.probe && w.head >= first && w.head < first+n {
		res.Head = w.head - first
		res.Args = w.args
	}
	return res, nil
}

// Normalize reduces h to full normal form and reads it back as a term.
func (m *Machine) Normalize(h Handle) (lambda.Term, error) {
	v, err := m.force(h)
	if err != nil {
		return nil, err
	}
	return m.readback(v, 0)
}

// readback goes under a binder by applying the closure to a fresh
// neutral variable at the current depth.
func (m *Machine) readback(v value, depth int) (lambda.Term, error) {
	switch v.kind {
	case valClosure:
		x := m.neutral(depth, false)
		w, err := m.eval(v.body, m.bind(x, v.env), nil)
		if err != nil {
			return nil, err
		}
		body, err := m.readback(w, depth+1)
		if err != nil {
			return nil, err
		}
		return lambda.Abs{Body: body}, nil
	case valNeutral:
		if v.probe {
			return nil, m.malformed("opaque probe in result")
		}
		var t lambda.Term = lambda.Var{Index: depth - v.head - 1}
		for _, a := range v.args {
			av, err := m.force(a)
			if err != nil {
				return nil, err
			}
			at, err := m.readback(av, depth)
			if err != nil {
				return nil, err
			}
			t = lambda.App{Fun: t, Arg: at}
		}
		return t, nil
	default:
		return nil, m.malformed("empty value")
	}
}

// Normalize reduces t to normal form on a fresh Machine.
func Normalize(ctx context.Context, t lambda.Term, opts Options) (lambda.Term, Stats, error) {
	m := NewMachine(ctx, opts)
	h, err := m.Load(t)
	if err != nil {
		return nil, m.GetStats(), err
	}
	nf, err := m.Normalize(h)
	if err != nil {
		return nil, m.GetStats(), err
	}
	m.Finish()
	return nf, m.GetStats(), nil
}
