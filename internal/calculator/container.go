package calculator

import "fmt"

// FitPallets estimates how many loaded pallets fit in one container and how many
// containers the stacking plan needs. Pallets are placed on the container floor
// with the same orientation rule as boxes on a pallet and stacked in tiers while the
// container height allows. The payload limit caps the count in whole pallets
// (floor of payload over loaded pallet weight) rather than in whole tiers.
func FitPallets(box Box, pallet Pallet, plan StackingPlan, container Container) (FitReport, error) {
	if err := container.Validate(); err != nil {
		return FitReport{}, err
	}
	if plan.BoxesPerPallet <= 0 || plan.PalletsNeeded <= 0 {
		return FitReport{}, fmt.Errorf("%w: stacking plan holds no boxes", ErrBoxExceedsPallet)
	}

	floor := Footprint{Length: container.InternalDimension.Length, Width: container.InternalDimension.Width}
	l, err := bestLayout(floor, palletCandidates(pallet.Footprint, plan.LoadHeight))
	if err != nil {
		return FitReport{}, fmt.Errorf("container: %w", err)
	}
	if l.perLayer == 0 {
		return FitReport{}, fmt.Errorf("%w: pallet footprint %gx%g mm exceeds container floor %gx%g mm",
			ErrPalletExceedsContainer, pallet.Footprint.Length, pallet.Footprint.Width, floor.Length, floor.Width)
	}

	tiers := fitCount(container.InternalDimension.Height, plan.LoadHeight)
	if tiers == 0 {
		return FitReport{}, fmt.Errorf("%w: loaded pallet height %g mm exceeds container height %g mm",
			ErrPalletExceedsContainer, plan.LoadHeight, container.InternalDimension.Height)
	}

	pallets := float64(l.perLayer) * tiers
	if byWeight := fitCount(container.MaxPayloadWeight, plan.LoadWeight); byWeight < pallets {
		pallets = byWeight
	}
	if pallets == 0 {
		return FitReport{}, fmt.Errorf("%w: loaded pallet weighs %g kg, container payload is %g kg",
			ErrPalletExceedsContainer, plan.LoadWeight, container.MaxPayloadWeight)
	}
	perContainer, err := toCount(pallets, "pallets per container")
	if err != nil {
		return FitReport{}, fmt.Errorf("container: %w", err)
	}
	boxesPerContainer, err := toCount(pallets*float64(plan.BoxesPerPallet), "boxes per container")
	if err != nil {
		return FitReport{}, fmt.Errorf("container: %w", err)
	}

	containers := ceilDiv(plan.PalletsNeeded, perContainer)
	shippedWeight := box.Weight*float64(box.Quantity) + pallet.TareWeight*float64(plan.PalletsNeeded)

	return FitReport{
		Mode:                 ModePalletized,
		ContainerType:        container.Type,
		Orientation:          l.orientation,
		PalletsPerContainer:  perContainer,
		BoxesPerContainer:    boxesPerContainer,
		ContainersNeeded:     containers,
		TotalVolumeUsedRatio: usedRatio(box.Dimension.Volume()*float64(box.Quantity), container.InternalDimension.Volume(), containers),
		TotalWeightUsedRatio: usedRatio(shippedWeight, container.MaxPayloadWeight, containers),
		LeftoverBoxes:        containers*boxesPerContainer - box.Quantity,
	}, nil
}

// FitLoose floor-loads boxes directly into containers without pallets, treating the
// container floor as the stacking base, its height as the stack limit and its
// payload as the weight limit.
func FitLoose(box Box, container Container) (FitReport, error) {
	if err := box.Validate(); err != nil {
		return FitReport{}, err
	}
	if err := container.Validate(); err != nil {
		return FitReport{}, err
	}

	d := container.InternalDimension
	floor := Footprint{Length: d.Length, Width: d.Width}
	s, err := stackOn(floor, boxCandidates(box), d.Height, container.MaxPayloadWeight, box.Weight)
	if err != nil {
		return FitReport{}, fmt.Errorf("container: %w", err)
	}
	switch {
	case s.perLayer == 0:
		return FitReport{}, fmt.Errorf("%w: footprint %gx%g mm exceeds container floor %gx%g mm",
			ErrBoxExceedsContainer, box.Dimension.Length, box.Dimension.Width, floor.Length, floor.Width)
	case s.layers == 0 && s.binding == ConstraintHeight:
		return FitReport{}, fmt.Errorf("%w: box height %g mm exceeds container height %g mm",
			ErrBoxExceedsContainer, s.height, d.Height)
	case s.layers == 0:
		return FitReport{}, fmt.Errorf("%w: one layer of %d boxes exceeds container payload %g kg",
			ErrBoxExceedsContainer, s.perLayer, container.MaxPayloadWeight)
	}

	perContainer := s.total
	containers := ceilDiv(box.Quantity, perContainer)

	return FitReport{
		Mode:                 ModeLoose,
		ContainerType:        container.Type,
		Orientation:          s.orientation,
		BoxesPerContainer:    perContainer,
		ContainersNeeded:     containers,
		TotalVolumeUsedRatio: usedRatio(box.Dimension.Volume()*float64(box.Quantity), d.Volume(), containers),
		TotalWeightUsedRatio: usedRatio(box.Weight*float64(box.Quantity), container.MaxPayloadWeight, containers),
		LeftoverBoxes:        containers*perContainer - box.Quantity,
	}, nil
}

func usedRatio(used, capacityPerContainer float64, containers int) float64 {
	return clampRatio(used / (capacityPerContainer * float64(containers)))
}
