package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioPlan(t *testing.T) StackingPlan {
	t.Helper()
	plan, err := PlanPallet(scenarioBox(), scenarioPallet())
	require.NoError(t, err)
	return plan
}

func TestFitPallets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		container    Container
		perContainer int
		containers   int
		leftover     int
		orientation  Orientation
	}{
		{
			name:         "FloorOnly",
			container:    scenarioContainer(),
			perContainer: 8, // floor(5900/1200) * floor(2350/1000)
			containers:   1,
			leftover:     92,
			orientation:  OrientationLengthAligned,
		},
		{
			name: "TwoTiers",
			container: Container{
				Type:              ContainerCustom,
				InternalDimension: Dimension{Length: 5900, Width: 2350, Height: 3600},
				MaxPayloadWeight:  28200,
			},
			perContainer: 16,
			containers:   1,
			leftover:     284,
			orientation:  OrientationLengthAligned,
		},
		{
			name: "PayloadCapsWholePallets",
			container: Container{
				Type:              ContainerCustom,
				InternalDimension: Dimension{Length: 5900, Width: 2350, Height: 2393},
				MaxPayloadWeight:  1000, // 4 pallets of 240 kg; a full tier of 8 would not fit
			},
			perContainer: 4,
			containers:   2,
			leftover:     92,
			orientation:  OrientationLengthAligned,
		},
		{
			name: "RotatedOnNarrowFloor",
			container: Container{
				Type:              ContainerCustom,
				InternalDimension: Dimension{Length: 3000, Width: 1250, Height: 2000},
				MaxPayloadWeight:  10000,
			},
			perContainer: 3, // floor(3000/1000) * floor(1250/1200)
			containers:   2,
			leftover:     44,
			orientation:  OrientationRotated90,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fit, err := FitPallets(scenarioBox(), scenarioPallet(), scenarioPlan(t), tc.container)
			require.NoError(t, err)

			assert.Equal(t, ModePalletized, fit.Mode)
			assert.Equal(t, tc.orientation, fit.Orientation)
			assert.Equal(t, tc.perContainer, fit.PalletsPerContainer)
			assert.Equal(t, tc.perContainer*24, fit.BoxesPerContainer)
			assert.Equal(t, tc.containers, fit.ContainersNeeded)
			assert.Equal(t, tc.leftover, fit.LeftoverBoxes)
			assert.GreaterOrEqual(t, fit.LeftoverBoxes, 0)
			assert.LessOrEqual(t, fit.TotalVolumeUsedRatio, 1.0)
			assert.LessOrEqual(t, fit.TotalWeightUsedRatio, 1.0)
		})
	}
}

func TestFitPalletsRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		container Container
		wantErr   error
	}{
		{
			name: "FloorTooSmall",
			container: Container{
				Type:              ContainerCustom,
				InternalDimension: Dimension{Length: 1100, Width: 1100, Height: 2400},
				MaxPayloadWeight:  28200,
			},
			wantErr: ErrPalletExceedsContainer,
		},
		{
			name: "TooLow",
			container: Container{
				Type:              ContainerCustom,
				InternalDimension: Dimension{Length: 5900, Width: 2350, Height: 1799},
				MaxPayloadWeight:  28200,
			},
			wantErr: ErrPalletExceedsContainer,
		},
		{
			name: "PayloadBelowOnePallet",
			container: Container{
				Type:              ContainerCustom,
				InternalDimension: Dimension{Length: 5900, Width: 2350, Height: 2393},
				MaxPayloadWeight:  200,
			},
			wantErr: ErrPalletExceedsContainer,
		},
		{
			name: "InvalidInterior",
			container: Container{
				Type:              ContainerCustom,
				InternalDimension: Dimension{Length: 5900, Width: -1, Height: 2393},
				MaxPayloadWeight:  28200,
			},
			wantErr: ErrInvalidDimension,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fit, err := FitPallets(scenarioBox(), scenarioPallet(), scenarioPlan(t), tc.container)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, FitReport{}, fit)
		})
	}
}

func TestFitPalletsRejectsEmptyPlan(t *testing.T) {
	t.Parallel()

	_, err := FitPallets(scenarioBox(), scenarioPallet(), StackingPlan{}, scenarioContainer())
	assert.ErrorIs(t, err, ErrBoxExceedsPallet)
}

func TestFitPalletsStandardContainers(t *testing.T) {
	t.Parallel()

	// EUR pallet 1200x800 with a 144 mm deck
	pallet := Pallet{
		Footprint:      Footprint{Length: 1200, Width: 800},
		MaxStackHeight: 1800,
		MaxWeight:      1000,
		DeckHeight:     144,
		TareWeight:     25,
	}
	box := Box{Dimension: Dimension{Length: 400, Width: 300, Height: 300}, Weight: 8, Quantity: 2000}
	plan, err := PlanPallet(box, pallet)
	require.NoError(t, err)

	want := map[ContainerType]int{
		Container20ft:   8,  // 4 x 2 beats 7 x 1 rotated
		Container40ft:   20, // 10 x 2
		Container40ftHC: 20,
	}
	for _, c := range StandardContainers() {
		fit, err := FitPallets(box, pallet, plan, c)
		require.NoError(t, err, "container %s", c.Type)
		assert.Equal(t, want[c.Type], fit.PalletsPerContainer, "container %s", c.Type)
		assert.Equal(t, c.Type, fit.ContainerType)
	}
}

func TestFitLooseRejects(t *testing.T) {
	t.Parallel()

	container, _ := StandardContainer(Container20ft)

	tall := Box{Dimension: Dimension{Length: 600, Width: 400, Height: 2500}, Weight: 10, Quantity: 1}
	_, err := FitLoose(tall, container)
	assert.ErrorIs(t, err, ErrBoxExceedsContainer)

	long := Box{Dimension: Dimension{Length: 6000, Width: 2400, Height: 100}, Weight: 10, Quantity: 1}
	_, err = FitLoose(long, container)
	assert.ErrorIs(t, err, ErrBoxExceedsContainer)

	_, err = FitLoose(Box{Dimension: Dimension{Length: 1, Width: 1, Height: 1}, Weight: 1}, container)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestFitCountToleratesFloatNoise(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2.0, fitCount(48*25.4, 24*25.4))
	assert.Equal(t, 1.0, fitCount(1200, 1200))
	assert.Equal(t, 0.0, fitCount(1199.999, 1200))
	assert.Equal(t, 0.0, fitCount(0, 10))
	assert.Equal(t, 0.0, fitCount(10, 0))
}

func TestCountsBeyondRangeAreRejected(t *testing.T) {
	t.Parallel()

	side := 1000 / (math.Pow(2, 32) + 1)
	pallet := Pallet{Footprint: Footprint{Length: 1000, Width: 1000}, MaxStackHeight: 1800, MaxWeight: 1000}
	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "PerLayerOnPallet",
			run: func() error {
				_, err := PlanPallet(Box{Dimension: Dimension{Length: side, Width: side, Height: 100}, Weight: 1e-12, Quantity: 1}, pallet)
				return err
			},
		},
		{
			name: "LayersOnPallet",
			run: func() error {
				_, err := PlanPallet(Box{Dimension: Dimension{Length: 1000, Width: 1000, Height: 1e-7}, Weight: 1e-12, Quantity: 1}, pallet)
				return err
			},
		},
		{
			name: "BoxesPerPallet",
			run: func() error {
				_, err := PlanPallet(Box{Dimension: Dimension{Length: 500, Width: 500, Height: 1.8e-6}, Weight: 1e-12, Quantity: 1}, pallet)
				return err
			},
		},
		{
			name: "LooseMicroscopicBox",
			run: func() error {
				container, _ := StandardContainer(Container20ft)
				_, err := FitLoose(Box{Dimension: Dimension{Length: 1e-6, Width: 1e-6, Height: 1e-6}, Weight: 1, Quantity: 1}, container)
				return err
			},
		},
		{
			name: "BoxesPerContainer",
			run: func() error {
				container, _ := StandardContainer(Container20ft)
				plan := StackingPlan{BoxesPerPallet: maxCount, PalletsNeeded: 1, LoadHeight: 1000, LoadWeight: 1}
				_, err := FitPallets(scenarioBox(), scenarioPallet(), plan, container)
				return err
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tc.run(), ErrCountOutOfRange)
		})
	}
}

func TestCeilDivDoesNotOverflow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ceilDiv(math.MaxInt, math.MaxInt))
	assert.Equal(t, 2, ceilDiv(math.MaxInt, math.MaxInt-1))
	assert.Equal(t, 3, ceilDiv(7, 3))
}

func TestComputeVolumeLinearInQuantity(t *testing.T) {
	t.Parallel()

	box := Box{Dimension: Dimension{Length: 123.4, Width: 56.7, Height: 89.1}, Weight: 3.3}
	for _, n := range []int{1, 2, 7, 100, 12345} {
		box.Quantity = n
		v, err := ComputeVolume(box)
		require.NoError(t, err)
		assert.Equal(t, float64(n)*v.UnitVolume, v.TotalVolume, "quantity %d", n)
		assert.Equal(t, float64(n)*box.Weight, v.TotalWeight, "quantity %d", n)
	}

	_, err := ComputeVolume(Box{Dimension: Dimension{Length: 1, Width: 1, Height: 1}, Weight: 1, Quantity: -3})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ComputeVolume(Box{Dimension: Dimension{Length: 1, Width: 1, Height: 1}, Weight: 1, Quantity: maxCount + 1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestComputeVolumeRejectsOverflow(t *testing.T) {
	t.Parallel()

	_, err := ComputeVolume(Box{Dimension: Dimension{Length: 1e103, Width: 1e103, Height: 1e103}, Weight: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = ComputeVolume(Box{Dimension: Dimension{Length: 1e102, Width: 1e102, Height: 1e102}, Weight: 1, Quantity: 1000})
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = ComputeVolume(Box{Dimension: Dimension{Length: 1, Width: 1, Height: 1}, Weight: 1e308, Quantity: 10})
	assert.ErrorIs(t, err, ErrInvalidWeight)

	report, err := Calculate(Request{
		Box:       Box{Dimension: Dimension{Length: 1e103, Width: 1e103, Height: 1e103}, Weight: 1, Quantity: 1},
		Container: Container{Type: ContainerCustom, InternalDimension: Dimension{Length: 1e104, Width: 1e104, Height: 1e104}, MaxPayloadWeight: 28200},
		Mode:      ModeLoose,
	})
	assert.ErrorIs(t, err, ErrInvalidDimension)
	assert.Equal(t, Report{}, report)
}
