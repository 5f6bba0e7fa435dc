package calculator

import "fmt"

// PlanPallet determines how many boxes legally stack on one pallet and how many
// pallets the box quantity needs. Physical counts round down; the pallet count
// rounds up.
func PlanPallet(box Box, pallet Pallet) (StackingPlan, error) {
	if err := box.Validate(); err != nil {
		return StackingPlan{}, err
	}
	if err := pallet.Validate(); err != nil {
		return StackingPlan{}, err
	}

	s, err := stackOn(pallet.Footprint, boxCandidates(box), pallet.MaxStackHeight, pallet.MaxWeight, box.Weight)
	if err != nil {
		return StackingPlan{}, fmt.Errorf("pallet: %w", err)
	}
	switch {
	case s.perLayer == 0:
		return StackingPlan{}, fmt.Errorf("%w: footprint %gx%g mm exceeds pallet %gx%g mm in every orientation",
			ErrBoxExceedsPallet, box.Dimension.Length, box.Dimension.Width, pallet.Footprint.Length, pallet.Footprint.Width)
	case s.layers == 0 && s.binding == ConstraintHeight:
		return StackingPlan{}, fmt.Errorf("%w: box height %g mm exceeds max stack height %g mm",
			ErrBoxExceedsPallet, s.height, pallet.MaxStackHeight)
	case s.layers == 0:
		return StackingPlan{}, fmt.Errorf("%w: one layer of %d boxes weighs %g kg, pallet limit is %g kg",
			ErrBoxExceedsPallet, s.perLayer, box.Weight*float64(s.perLayer), pallet.MaxWeight)
	}

	perPallet := s.total
	usedVolume := float64(perPallet) * box.Dimension.Volume()
	usedWeight := float64(perPallet) * box.Weight

	return StackingPlan{
		Orientation:           s.orientation,
		BoxesPerLayer:         s.perLayer,
		LayerCount:            s.layers,
		BoxesPerPallet:        perPallet,
		PalletsNeeded:         ceilDiv(box.Quantity, perPallet),
		UsedPalletVolumeRatio: clampRatio(usedVolume / (pallet.Footprint.Area() * pallet.MaxStackHeight)),
		UsedPalletWeightRatio: clampRatio(usedWeight / pallet.MaxWeight),
		BindingConstraint:     s.binding,
		LoadHeight:            pallet.DeckHeight + float64(s.layers)*s.height,
		LoadWeight:            pallet.TareWeight + usedWeight,
	}, nil
}
