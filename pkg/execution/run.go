package execution

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"github.com/vic/goblc/pkg/church"
	"github.com/vic/goblc/pkg/lambda"
	"github.com/vic/goblc/pkg/reduce"
)

var log = commonlog.GetLogger("blc.execution")

// Output yields the bytes of a running program one at a time. Reduction
// happens inside Next, only as far as the next byte requires.
type Output struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	m     *reduce.Machine
	stats reduce.Stats

	fill    func(dst []byte) ([]byte, bool, error)
	pending []byte
	count   int
	err     error
	closed  bool
}

// Stream starts prog on in. Nothing is reduced until Next is called.
func Stream(ctx context.Context, prog Program, in Input, opts ...Option) *Output {
	o := &Output{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(&o.opts)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if o.opts.Timeout > 0 {
		o.ctx, o.cancel = context.WithTimeout(ctx, o.opts.Timeout)
	} else {
		o.ctx, o.cancel = context.WithCancel(ctx)
	}
	if err := o.start(prog, in); err != nil {
		o.stop(wrap(err))
	}
	return o
}

func (o *Output) start(prog Program, in Input) error {
	if prog.Term == nil {
		return fmt.Errorf("%w: empty program", reduce.ErrMalformedTerm)
	}
	arg, err := in.argument(prog.Prefix)
	if err != nil {
		return err
	}
	if !o.opts.AllowFree {
		if !lambda.IsClosed(prog.Term) {
			return fmt.Errorf("%w: program has free variables", reduce.ErrMalformedTerm)
		}
		if arg != nil && !lambda.IsClosed(arg) {
			return fmt.Errorf("%w: input has free variables", reduce.ErrMalformedTerm)
		}
	}
	log.Debugf("run: %d-node program, %v input, %v strategy, %v output", lambda.Size(prog.Term), in.kind, o.opts.Strategy, o.opts.Mode)

	switch o.opts.Strategy {
	case StrategyGraph:
		return o.startGraph(prog.Term, arg)
	case StrategyTree:
		o.startTree(prog.Term, arg)
		return nil
	default:
		return fmt.Errorf("unknown strategy %v", o.opts.Strategy)
	}
}

func (o *Output) startGraph(prog, arg lambda.Term) error {
	m := reduce.NewMachine(o.ctx, reduce.Options{Limits: o.opts.Limits, AllowFree: o.opts.AllowFree})
	if o.opts.TraceCapacity > 0 {
		m.EnableTrace(o.opts.TraceCapacity)
	}
	o.m = m
	root, err := m.Load(prog)
	if err != nil {
		return err
	}
	if arg != nil {
		in, err := m.Load(arg)
		if err != nil {
			return err
		}
		root = m.Apply(root, in)
	}

	inspector := graphInspector{m: m}
	switch o.opts.Mode {
	case ModeTerm:
		o.fill = renderOnce(func() (lambda.Term, error) { return m.Normalize(root) })
	case ModeAuto:
		d := &autoDecoder[reduce.Handle]{in: inspector, render: m.Normalize, cur: root}
		o.fill = d.next
	default:
		o.fill = decodeBytes(church.NewDecoder[reduce.Handle](inspector, root))
	}
	return nil
}

func (o *Output) startTree(prog, arg lambda.Term) {
	term := prog
	if arg != nil {
		term = lambda.App{Fun: prog, Arg: arg}
	}
	var nf lambda.Term
	normalize := func() (lambda.Term, error) {
		if nf != nil {
			return nf, nil
		}
		t, stats, err := reduce.NormalizeTree(o.ctx, term, o.opts.Limits)
		o.stats = stats
		if err != nil {
			return nil, err
		}
		nf = t
		return nf, nil
	}
	identity := func(t lambda.Term) (lambda.Term, error) { return t, nil }

	switch o.opts.Mode {
	case ModeTerm:
		o.fill = renderOnce(normalize)
	default:
		var next func([]byte) ([]byte, bool, error)
		o.fill = func(dst []byte) ([]byte, bool, error) {
			if next == nil {
				t, err := normalize()
				if err != nil {
					return dst, false, err
				}
				if o.opts.Mode == ModeAuto {
					d := &autoDecoder[lambda.Term]{in: church.Terms{}, render: identity, cur: t}
					next = d.next
				} else {
					next = decodeBytes(church.NewDecoder[lambda.Term](church.Terms{}, t))
				}
			}
			return next(dst)
		}
	}
}

func renderOnce(normalize func() (lambda.Term, error)) func([]byte) ([]byte, bool, error) {
	done := false
	return func(dst []byte) ([]byte, bool, error) {
		if done {
			return dst, false, nil
		}
		t, err := normalize()
		if err != nil {
			return dst, false, err
		}
		done = true
		return append(dst, t.String()...), true, nil
	}
}

func decodeBytes[H any](d *church.Decoder[H]) func([]byte) ([]byte, bool, error) {
	return func(dst []byte) ([]byte, bool, error) {
		b, err := d.Next()
		if err == io.EOF {
			return dst, false, nil
		}
		if err != nil {
			return dst, false, err
		}
		return append(dst, b), true, nil
	}
}

// Next returns the next output byte, io.EOF when the output list ends, or
// an *Error. Errors are sticky.
func (o *Output) Next() (byte, error) {
	for len(o.pending) == 0 {
		if o.err != nil {
			return 0, o.err
		}
		var ok bool
		var err error
		o.pending, ok, err = o.fill(o.pending[:0])
		if err != nil {
			o.stop(wrap(err))
		} else if !ok && len(o.pending) == 0 {
			if o.m != nil {
				o.m.Finish()
			}
			o.stop(io.EOF)
		}
	}
	b := o.pending[0]
	o.pending = o.pending[1:]
	o.count++
	return b, nil
}

// Count is the number of bytes returned so far.
func (o *Output) Count() int { return o.count }

// Stats reports the reduction work done so far.
func (o *Output) Stats() reduce.Stats {
	if o.m != nil {
		return o.m.GetStats()
	}
	return o.stats
}

// Trace returns the recorded machine events when tracing was enabled.
func (o *Output) Trace() []reduce.TraceEvent {
	if o.m == nil {
		return nil
	}
	return o.m.TraceSnapshot()
}

// Close releases the run. Calling Next after Close returns an error.
func (o *Output) Close() {
	if !o.closed {
		o.stop(&Error{Kind: KindCanceled, Err: context.Canceled})
	}
}

func (o *Output) stop(err error) {
	if o.err == nil {
		o.err = err
		if err == io.EOF {
			log.Debugf("run finished: %d bytes, %d reductions", o.count, o.Stats().TotalReductions)
		} else {
			log.Debugf("run failed after %d bytes: %v", o.count, err)
		}
	}
	if !o.closed {
		o.closed = true
		o.cancel()
	}
}

// Run applies prog to in and returns the whole output. On failure the
// result is nil and the *Error carries the bytes decoded before it.
func Run(ctx context.Context, prog Program, in Input, opts ...Option) ([]byte, error) {
	out := Stream(ctx, prog, in, opts...)
	defer out.Close()
	var buf []byte
	for {
		b, err := out.Next()
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				e.Partial = buf
			}
			return nil, err
		}
		buf = append(buf, b)
	}
}
