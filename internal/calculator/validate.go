package calculator

import (
	"fmt"
	"math"
)

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Validate checks that all three edges are positive.
func (d Dimension) Validate() error {
	switch {
	case !positive(d.Length):
		return fmt.Errorf("%w: length %v", ErrInvalidDimension, d.Length)
	case !positive(d.Width):
		return fmt.Errorf("%w: width %v", ErrInvalidDimension, d.Width)
	case !positive(d.Height):
		return fmt.Errorf("%w: height %v", ErrInvalidDimension, d.Height)
	}
	return nil
}

// Validate checks the box dimensions, weight and quantity.
func (b Box) Validate() error {
	if err := b.Dimension.Validate(); err != nil {
		return fmt.Errorf("box: %w", err)
	}
	if !positive(b.Weight) {
		return fmt.Errorf("box: %w: weight %v", ErrInvalidWeight, b.Weight)
	}
	if b.Quantity <= 0 || b.Quantity > maxCount {
		return fmt.Errorf("box: %w: got %d", ErrInvalidQuantity, b.Quantity)
	}
	return nil
}

// Validate checks the pallet footprint and limits.
func (p Pallet) Validate() error {
	switch {
	case !positive(p.Footprint.Length):
		return fmt.Errorf("pallet: %w: length %v", ErrInvalidDimension, p.Footprint.Length)
	case !positive(p.Footprint.Width):
		return fmt.Errorf("pallet: %w: width %v", ErrInvalidDimension, p.Footprint.Width)
	case !positive(p.MaxStackHeight):
		return fmt.Errorf("pallet: %w: max stack height %v", ErrInvalidDimension, p.MaxStackHeight)
	case !nonNegative(p.DeckHeight):
		return fmt.Errorf("pallet: %w: deck height %v", ErrInvalidDimension, p.DeckHeight)
	case !positive(p.MaxWeight):
		return fmt.Errorf("pallet: %w: max weight %v", ErrInvalidWeight, p.MaxWeight)
	case !nonNegative(p.TareWeight):
		return fmt.Errorf("pallet: %w: tare weight %v", ErrInvalidWeight, p.TareWeight)
	}
	return nil
}

// Validate checks the container type, interior and payload.
func (c Container) Validate() error {
	switch c.Type {
	case Container20ft, Container40ft, Container40ftHC, ContainerCustom:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidContainerType, c.Type)
	}
	if err := c.InternalDimension.Validate(); err != nil {
		return fmt.Errorf("container: %w", err)
	}
	if !positive(c.MaxPayloadWeight) {
		return fmt.Errorf("container: %w: max payload %v", ErrInvalidWeight, c.MaxPayloadWeight)
	}
	return nil
}

// Validate checks every input the request's mode will use.
func (r Request) Validate() error {
	if err := r.Box.Validate(); err != nil {
		return err
	}
	switch r.Mode {
	case "", ModePalletized:
		if err := r.Pallet.Validate(); err != nil {
			return err
		}
	case ModeLoose:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLoadMode, r.Mode)
	}
	return r.Container.Validate()
}
