package execution

import (
	"github.com/vic/goblc/pkg/church"
	"github.com/vic/goblc/pkg/lambda"
	"github.com/vic/goblc/pkg/reduce"
)

// graphInspector decides list shapes on a live machine by probing: a
// cons cell applied to probes p, q reduces to p head tail q, nil (which
// is false) reduces to q, true reduces to p.
type graphInspector struct {
	m *reduce.Machine
}

var _ church.Inspector[reduce.Handle] = graphInspector{}

func (g graphInspector) Uncons(h reduce.Handle) (church.Shape, reduce.Handle, reduce.Handle, error) {
	res, err := g.m.Probe(h, 2)
	if err != nil {
		return church.ShapeOther, 0, 0, err
	}
	switch {
	case res.Head == 0 && len(res.Args) == 3 && res.Args[2] == res.Probes[1]:
		return church.ShapeCons, res.Args[0], res.Args[1], nil
	case res.Head == 1 && len(res.Args) == 0:
		return church.ShapeNil, 0, 0, nil
	}
	return church.ShapeOther, 0, 0, nil
}

func (g graphInspector) Boolean(h reduce.Handle) (byte, bool, error) {
	res, err := g.m.Probe(h, 2)
	if err != nil {
		return 0, false, err
	}
	if len(res.Args) != 0 {
		return 0, false, nil
	}
	switch res.Head {
	case 0:
		return 0, true, nil
	case 1:
		return 1, true, nil
	}
	return 0, false, nil
}

// autoDecoder reproduces the permissive output of the classic tool: a
// list element that is a list is a byte, a boolean element is written as
// '0' or '1', and anything that is not a list is rendered in parentheses
// and ends the output.
type autoDecoder[H any] struct {
	in     church.Inspector[H]
	render func(H) (lambda.Term, error)
	cur    H
	index  int
	done   bool
}

// next appends the output of one list element to dst. It returns
// ok == false once the output is complete.
func (d *autoDecoder[H]) next(dst []byte) ([]byte, bool, error) {
	if d.done {
		return dst, false, nil
	}
	shape, head, tail, err := d.in.Uncons(d.cur)
	if err != nil {
		return dst, false, err
	}
	switch shape {
	case church.ShapeNil:
		d.done = true
		return dst, false, nil
	case church.ShapeCons:
		hs, _, _, err := d.in.Uncons(head)
		if err != nil {
			return dst, false, err
		}
		if hs == church.ShapeCons {
			b, err := church.DecodeByte(d.in, head)
			if err == nil {
				d.cur = tail
				d.index++
				return append(dst, b), true, nil
			}
			if classify(err) == KindDiverged || classify(err) == KindCanceled {
				return dst, false, err
			}
		} else {
			bit, ok, err := d.in.Boolean(head)
			if err != nil {
				return dst, false, err
			}
			if ok {
				d.cur = tail
				d.index++
				return append(dst, '0'+bit), true, nil
			}
		}
	}
	t, err := d.render(d.cur)
	if err != nil {
		return dst, false, err
	}
	d.done = true
	dst = append(dst, '(')
	dst = append(dst, t.String()...)
	return append(dst, ')'), true, nil
}
