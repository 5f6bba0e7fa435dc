package calculator

import (
	"fmt"
	"math"
)

// fitEpsilon absorbs float noise from unit conversion (e.g. 1219.2 / 609.6) so an
// exact fit is never rounded down to one item fewer.
const fitEpsilon = 1e-9

// maxCount bounds every item count the engine reports.
const maxCount = math.MaxInt32

// fitCount is the number of whole items of size that fit into space. It stays a
// float64 so products of counts can be bounded before converting to int.
func fitCount(space, size float64) float64 {
	if size <= 0 || space <= 0 {
		return 0
	}
	return math.Floor(space/size + fitEpsilon)
}

// toCount converts a whole-item count to int, rejecting counts above maxCount.
func toCount(n float64, what string) (int, error) {
	if math.IsNaN(n) || n > maxCount {
		return 0, fmt.Errorf("%w: %s %g exceeds %d", ErrCountOutOfRange, what, n, maxCount)
	}
	return int(n), nil
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

func clampRatio(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// candidate is one way of standing an item on a base.
type candidate struct {
	orientation Orientation
	along       float64 // edge parallel to the base length
	across      float64 // edge parallel to the base width
	height      float64
}

// layout is the chosen single-layer arrangement on a base.
type layout struct {
	candidate
	perLayer   int
	unusedArea float64
}

// boxCandidates lists the orientations a box may take, in tie-break order.
func boxCandidates(b Box) []candidate {
	d := b.Dimension
	cands := []candidate{
		{orientation: OrientationLengthAligned, along: d.Length, across: d.Width, height: d.Height},
		{orientation: OrientationRotated90, along: d.Width, across: d.Length, height: d.Height},
	}
	if b.AllowTipping {
		cands = append(cands, candidate{orientation: OrientationWidthAligned, along: d.Length, across: d.Height, height: d.Width})
	}
	return cands
}

// palletCandidates lists the orientations of a pallet on a container floor.
// Pallets are never tipped.
func palletCandidates(f Footprint, height float64) []candidate {
	return []candidate{
		{orientation: OrientationLengthAligned, along: f.Length, across: f.Width, height: height},
		{orientation: OrientationRotated90, along: f.Width, across: f.Length, height: height},
	}
}

// bestLayout picks the candidate with the most items per layer, then the smaller
// unused base area, then the earlier candidate.
func bestLayout(base Footprint, cands []candidate) (layout, error) {
	var best layout
	for i, c := range cands {
		perLayer, err := toCount(fitCount(base.Length, c.along)*fitCount(base.Width, c.across), "items per layer")
		if err != nil {
			return layout{}, err
		}
		l := layout{
			candidate:  c,
			perLayer:   perLayer,
			unusedArea: base.Area() - float64(perLayer)*c.along*c.across,
		}
		if i == 0 || l.perLayer > best.perLayer ||
			(l.perLayer == best.perLayer && l.unusedArea < best.unusedArea-fitEpsilon) {
			best = l
		}
	}
	return best, nil
}

// stack is the result of stacking uniform items on a base under height and weight limits.
type stack struct {
	layout
	layers  int
	total   int
	binding Constraint
}

// stackOn arranges items on base, limits layers by maxHeight and by maxWeight over
// the weight of a full layer, whichever is smaller.
func stackOn(base Footprint, cands []candidate, maxHeight, maxWeight, itemWeight float64) (stack, error) {
	l, err := bestLayout(base, cands)
	if err != nil {
		return stack{}, err
	}
	s := stack{layout: l, binding: ConstraintHeight}
	if s.perLayer == 0 {
		return s, nil
	}

	layers := fitCount(maxHeight, s.height)
	if byWeight := fitCount(maxWeight, itemWeight*float64(s.perLayer)); byWeight < layers {
		layers = byWeight
		s.binding = ConstraintWeight
	}
	if s.layers, err = toCount(layers, "layers"); err != nil {
		return stack{}, err
	}
	if s.total, err = toCount(float64(s.perLayer)*layers, "items per stack"); err != nil {
		return stack{}, err
	}
	return s, nil
}
