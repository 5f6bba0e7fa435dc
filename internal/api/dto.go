package api

import (
	"fmt"
	"math"
	"time"

	"github.com/eugenenazirov/cbm-calculator/internal/calculator"
	"github.com/eugenenazirov/cbm-calculator/internal/storage"
	"github.com/eugenenazirov/cbm-calculator/internal/units"
)

// Every length group and every weight carries its own unit; there is no default.

type lengthsRequest struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit" validate:"required"`
}

type weightRequest struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit" validate:"required"`
}

type boxRequest struct {
	Dimensions   lengthsRequest `json:"dimensions"`
	Weight       weightRequest  `json:"weight"`
	Quantity     float64        `json:"quantity"`
	AllowTipping bool           `json:"allowTipping"`
}

type customPalletRequest struct {
	Length         float64        `json:"length"`
	Width          float64        `json:"width"`
	MaxStackHeight float64        `json:"maxStackHeight"`
	DeckHeight     float64        `json:"deckHeight"`
	Unit           string         `json:"unit" validate:"required"`
	MaxWeight      weightRequest  `json:"maxWeight"`
	TareWeight     *weightRequest `json:"tareWeight,omitempty"`
}

type palletRequest struct {
	Preset string               `json:"preset,omitempty" validate:"required_without=Custom,excluded_with=Custom"`
	Custom *customPalletRequest `json:"custom,omitempty"`
}

type customContainerRequest struct {
	Length     float64       `json:"length"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Unit       string        `json:"unit" validate:"required"`
	MaxPayload weightRequest `json:"maxPayload"`
}

type containerRequest struct {
	Type   string                  `json:"type" validate:"required,oneof=20ft 40ft 40ftHC custom"`
	Custom *customContainerRequest `json:"custom,omitempty" validate:"required_if=Type custom,excluded_unless=Type custom"`
}

type calculateRequest struct {
	Box        boxRequest       `json:"box"`
	Pallet     *palletRequest   `json:"pallet,omitempty"`
	Container  containerRequest `json:"container"`
	Mode       string           `json:"mode,omitempty" validate:"omitempty,oneof=palletized loose"`
	VolumeUnit string           `json:"volumeUnit,omitempty" validate:"omitempty,oneof=cbm cft"`
}

type palletPresetRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	customPalletRequest
}

type palletsRequest struct {
	Pallets []palletPresetRequest `json:"pallets" validate:"required,min=1,dive"`
}

type unitsResponse struct {
	Length string `json:"length"`
	Weight string `json:"weight"`
	Volume string `json:"volume"`
}

type volumeResponse struct {
	UnitVolume  float64 `json:"unitVolume"`
	TotalVolume float64 `json:"totalVolume"`
	TotalWeight float64 `json:"totalWeight"`
}

type calculateResponse struct {
	Units             unitsResponse            `json:"units"`
	Volume            volumeResponse           `json:"volume"`
	Stacking          *calculator.StackingPlan `json:"stacking,omitempty"`
	Fit               calculator.FitReport     `json:"fit"`
	Cached            bool                     `json:"cached"`
	CalculationTimeMs int64                    `json:"calculationTimeMs"`
}

type palletsResponse struct {
	Pallets   []storage.PalletPreset `json:"pallets"`
	Units     unitsResponse          `json:"units"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Message   string                 `json:"message,omitempty"`
}

type containersResponse struct {
	Containers []calculator.Container `json:"containers"`
	Units      unitsResponse          `json:"units"`
}

var canonicalUnits = unitsResponse{
	Length: string(units.Millimeter),
	Weight: string(units.Kilogram),
	Volume: string(units.CubicMeter),
}

func (l lengthsRequest) toDimension() (calculator.Dimension, error) {
	var d calculator.Dimension
	var err error
	if d.Length, err = units.Length(l.Length, l.Unit); err != nil {
		return d, err
	}
	if d.Width, err = units.Length(l.Width, l.Unit); err != nil {
		return d, err
	}
	d.Height, err = units.Length(l.Height, l.Unit)
	return d, err
}

func (w weightRequest) toKilograms() (float64, error) {
	return units.Weight(w.Value, w.Unit)
}

func (b boxRequest) toBox() (calculator.Box, error) {
	dim, err := b.Dimensions.toDimension()
	if err != nil {
		return calculator.Box{}, err
	}
	weight, err := b.Weight.toKilograms()
	if err != nil {
		return calculator.Box{}, err
	}
	if b.Quantity != math.Trunc(b.Quantity) || b.Quantity > math.MaxInt32 {
		return calculator.Box{}, fmt.Errorf("box: %w: got %v", calculator.ErrInvalidQuantity, b.Quantity)
	}
	return calculator.Box{
		Dimension:    dim,
		Weight:       weight,
		Quantity:     int(b.Quantity),
		AllowTipping: b.AllowTipping,
	}, nil
}

func (p customPalletRequest) toPallet() (calculator.Pallet, error) {
	var out calculator.Pallet
	lengths := []struct {
		src float64
		dst *float64
	}{
		{p.Length, &out.Footprint.Length},
		{p.Width, &out.Footprint.Width},
		{p.MaxStackHeight, &out.MaxStackHeight},
		{p.DeckHeight, &out.DeckHeight},
	}
	for _, l := range lengths {
		v, err := units.Length(l.src, p.Unit)
		if err != nil {
			return calculator.Pallet{}, err
		}
		*l.dst = v
	}

	var err error
	if out.MaxWeight, err = p.MaxWeight.toKilograms(); err != nil {
		return calculator.Pallet{}, err
	}
	if p.TareWeight != nil {
		if out.TareWeight, err = p.TareWeight.toKilograms(); err != nil {
			return calculator.Pallet{}, err
		}
	}
	return out, nil
}

func (c customContainerRequest) toContainer() (calculator.Container, error) {
	dim, err := lengthsRequest{Length: c.Length, Width: c.Width, Height: c.Height, Unit: c.Unit}.toDimension()
	if err != nil {
		return calculator.Container{}, err
	}
	payload, err := c.MaxPayload.toKilograms()
	if err != nil {
		return calculator.Container{}, err
	}
	return calculator.Container{
		Type:              calculator.ContainerCustom,
		InternalDimension: dim,
		MaxPayloadWeight:  payload,
	}, nil
}

func (p palletPresetRequest) toPreset() (storage.PalletPreset, error) {
	pallet, err := p.toPallet()
	if err != nil {
		return storage.PalletPreset{}, err
	}
	return storage.PalletPreset{Name: p.Name, Description: p.Description, Pallet: pallet}, nil
}

func newCalculateResponse(report calculator.Report, volumeUnit units.Unit, cached bool, elapsed time.Duration) (calculateResponse, error) {
	unitVolume, err := units.VolumeFromCubicMillimeters(report.Volume.UnitVolume, volumeUnit)
	if err != nil {
		return calculateResponse{}, err
	}
	totalVolume, err := units.VolumeFromCubicMillimeters(report.Volume.TotalVolume, volumeUnit)
	if err != nil {
		return calculateResponse{}, err
	}

	u := canonicalUnits
	u.Volume = string(volumeUnit)
	return calculateResponse{
		Units: u,
		Volume: volumeResponse{
			UnitVolume:  units.Round(unitVolume, 6),
			TotalVolume: units.Round(totalVolume, 4),
			TotalWeight: units.Round(report.Volume.TotalWeight, 3),
		},
		Stacking:          report.Stacking,
		Fit:               report.Fit,
		Cached:            cached,
		CalculationTimeMs: elapsed.Milliseconds(),
	}, nil
}
