package calculator

import "errors"

var (
	// ErrInvalidDimension is returned when a length, width or height is not a positive finite number.
	ErrInvalidDimension = errors.New("dimensions must be positive numbers")
	// ErrInvalidWeight is returned when a weight or weight limit is not a positive finite number.
	ErrInvalidWeight = errors.New("weights must be positive numbers")
	// ErrInvalidQuantity is returned when the box quantity is not a positive integer within the supported range.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInvalidLoadMode is returned for load modes other than palletized or loose.
	ErrInvalidLoadMode = errors.New("load mode must be palletized or loose")
	// ErrInvalidContainerType is returned for container types outside the supported set.
	ErrInvalidContainerType = errors.New("container type must be 20ft, 40ft, 40ftHC or custom")
	// ErrCountOutOfRange is returned when an item count would exceed the largest count the engine reports.
	ErrCountOutOfRange = errors.New("item count out of range")
	// ErrBoxExceedsPallet is returned when not even one box fits the pallet's footprint, height or weight limits.
	ErrBoxExceedsPallet = errors.New("box does not fit on the pallet")
	// ErrPalletExceedsContainer is returned when not even one loaded pallet fits the container.
	ErrPalletExceedsContainer = errors.New("loaded pallet does not fit in the container")
	// ErrBoxExceedsContainer is returned when not even one loose box fits the container.
	ErrBoxExceedsContainer = errors.New("box does not fit in the container")
)
