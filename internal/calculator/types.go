package calculator

// Dimension is a length × width × height triple in millimeters.
type Dimension struct {
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Volume returns the enclosed volume in cubic millimeters.
func (d Dimension) Volume() float64 {
	return d.Length * d.Width * d.Height
}

// Footprint is the base area of an object, ignoring height.
type Footprint struct {
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
}

// Area returns the footprint area in square millimeters.
func (f Footprint) Area() float64 {
	return f.Length * f.Width
}

// Box describes the cartons of one SKU. Lengths are in millimeters, weight in kilograms.
type Box struct {
	Dimension Dimension `json:"dimension"`
	Weight    float64   `json:"weight"`
	Quantity  int       `json:"quantity"`
	// AllowTipping permits laying the carton on its side. Cartons are
	// treated as "this side up" unless set.
	AllowTipping bool `json:"allowTipping,omitempty"`
}

// Pallet is a stacking platform with its load limits.
// DeckHeight and TareWeight describe the pallet board itself and may be zero.
type Pallet struct {
	Footprint      Footprint `json:"footprint" yaml:"footprint"`
	MaxStackHeight float64   `json:"maxStackHeight" yaml:"max_stack_height"`
	MaxWeight      float64   `json:"maxWeight" yaml:"max_weight"`
	DeckHeight     float64   `json:"deckHeight,omitempty" yaml:"deck_height"`
	TareWeight     float64   `json:"tareWeight,omitempty" yaml:"tare_weight"`
}

// ContainerType identifies a standard intermodal container or a custom one.
type ContainerType string

const (
	Container20ft   ContainerType = "20ft"
	Container40ft   ContainerType = "40ft"
	Container40ftHC ContainerType = "40ftHC"
	ContainerCustom ContainerType = "custom"
)

// Container is a shipping container's usable interior and payload limit.
type Container struct {
	Type              ContainerType `json:"type"`
	InternalDimension Dimension     `json:"internalDimension"`
	MaxPayloadWeight  float64       `json:"maxPayloadWeight"`
}

var standardContainers = map[ContainerType]Container{
	Container20ft: {
		Type:              Container20ft,
		InternalDimension: Dimension{Length: 5898, Width: 2352, Height: 2393},
		MaxPayloadWeight:  28200,
	},
	Container40ft: {
		Type:              Container40ft,
		InternalDimension: Dimension{Length: 12032, Width: 2352, Height: 2393},
		MaxPayloadWeight:  26700,
	},
	Container40ftHC: {
		Type:              Container40ftHC,
		InternalDimension: Dimension{Length: 12032, Width: 2352, Height: 2698},
		MaxPayloadWeight:  26460,
	},
}

// StandardContainer returns the interior and payload of a standard container type.
func StandardContainer(t ContainerType) (Container, bool) {
	c, ok := standardContainers[t]
	return c, ok
}

// StandardContainers lists the standard container types in ascending size.
func StandardContainers() []Container {
	return []Container{
		standardContainers[Container20ft],
		standardContainers[Container40ft],
		standardContainers[Container40ftHC],
	}
}

// Orientation records which box edge runs along which edge of the base it is placed on.
type Orientation string

const (
	// OrientationLengthAligned places the box length along the base length.
	OrientationLengthAligned Orientation = "length-aligned"
	// OrientationRotated90 turns the box a quarter turn so its width runs along the base length.
	OrientationRotated90 Orientation = "rotated-90"
	// OrientationWidthAligned lays the box on its side so its width is the vertical edge.
	OrientationWidthAligned Orientation = "width-aligned"
)

// LoadMode selects between palletized and floor-loaded shipments.
type LoadMode string

const (
	ModePalletized LoadMode = "palletized"
	ModeLoose      LoadMode = "loose"
)

// Constraint names the limit that bounded a stack.
type Constraint string

const (
	ConstraintHeight Constraint = "height"
	ConstraintWeight Constraint = "weight"
)

// Volume is the cubic volume (mm³) and gross weight (kg) of a box line.
type Volume struct {
	UnitVolume  float64 `json:"unitVolume"`
	TotalVolume float64 `json:"totalVolume"`
	TotalWeight float64 `json:"totalWeight"`
}

// StackingPlan describes how uniform boxes stack on one pallet.
// BoxesPerPallet always equals BoxesPerLayer * LayerCount.
type StackingPlan struct {
	Orientation           Orientation `json:"orientation"`
	BoxesPerLayer         int         `json:"boxesPerLayer"`
	LayerCount            int         `json:"layerCount"`
	BoxesPerPallet        int         `json:"boxesPerPallet"`
	PalletsNeeded         int         `json:"palletsNeeded"`
	UsedPalletVolumeRatio float64     `json:"usedPalletVolumeRatio"`
	UsedPalletWeightRatio float64     `json:"usedPalletWeightRatio"`
	BindingConstraint     Constraint  `json:"bindingConstraint"`
	// LoadHeight and LoadWeight describe a full pallet including the deck.
	LoadHeight float64 `json:"loadHeight"`
	LoadWeight float64 `json:"loadWeight"`
}

// FitReport estimates how a shipment fills standard containers.
// In loose mode PalletsPerContainer is zero and BoxesPerContainer carries the capacity.
type FitReport struct {
	Mode                 LoadMode      `json:"mode"`
	ContainerType        ContainerType `json:"containerType"`
	Orientation          Orientation   `json:"orientation"`
	PalletsPerContainer  int           `json:"palletsPerContainer"`
	BoxesPerContainer    int           `json:"boxesPerContainer"`
	ContainersNeeded     int           `json:"containersNeeded"`
	TotalVolumeUsedRatio float64       `json:"totalVolumeUsedRatio"`
	TotalWeightUsedRatio float64       `json:"totalWeightUsedRatio"`
	LeftoverBoxes        int           `json:"leftoverBoxes"`
}

// Report aggregates every stage of one calculation. Stacking is nil for loose loads.
type Report struct {
	Volume   Volume        `json:"volume"`
	Stacking *StackingPlan `json:"stacking,omitempty"`
	Fit      FitReport     `json:"fit"`
}

// Request is the normalized input of a calculation. Pallet is ignored in loose mode.
type Request struct {
	Box       Box
	Pallet    Pallet
	Container Container
	Mode      LoadMode
}

// Calculator describes the behaviour required from a shipment calculator.
type Calculator interface {
	Calculate(req Request) (Report, error)
}
