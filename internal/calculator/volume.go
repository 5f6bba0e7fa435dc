package calculator

import (
	"fmt"
	"math"
)

// ComputeVolume returns the per-box and total volume (mm³) and total weight (kg).
// Totals too large to represent are rejected rather than reported as infinite.
func ComputeVolume(box Box) (Volume, error) {
	if err := box.Validate(); err != nil {
		return Volume{}, err
	}
	unit := box.Dimension.Volume()
	qty := float64(box.Quantity)
	v := Volume{
		UnitVolume:  unit,
		TotalVolume: unit * qty,
		TotalWeight: box.Weight * qty,
	}
	if math.IsInf(v.TotalVolume, 0) {
		return Volume{}, fmt.Errorf("box: %w: volume of %d boxes overflows", ErrInvalidDimension, box.Quantity)
	}
	if math.IsInf(v.TotalWeight, 0) {
		return Volume{}, fmt.Errorf("box: %w: weight of %d boxes overflows", ErrInvalidWeight, box.Quantity)
	}
	return v, nil
}
