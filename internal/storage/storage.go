package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/eugenenazirov/cbm-calculator/internal/calculator"
)

const maxPallets = 32

var (
	// ErrInvalidPallets indicates the provided pallet presets violate validation rules.
	ErrInvalidPallets = errors.New("pallet presets must contain between 1 and 32 uniquely named, valid pallets")
	// ErrPresetNotFound is returned when a named pallet or container preset does not exist.
	ErrPresetNotFound = errors.New("preset not found")
)

// PalletPreset is a named pallet specification offered to callers.
type PalletPreset struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description"`
	Pallet      calculator.Pallet `json:"pallet" yaml:"pallet"`
}

var defaultPallets = []PalletPreset{
	{
		Name:        "EUR1",
		Description: "EUR/EPAL 1200x800 mm",
		Pallet: calculator.Pallet{
			Footprint:      calculator.Footprint{Length: 1200, Width: 800},
			MaxStackHeight: 1800,
			MaxWeight:      1000,
			DeckHeight:     144,
			TareWeight:     25,
		},
	},
	{
		Name:        "EUR2",
		Description: "EUR2 / ISO 1200x1000 mm",
		Pallet: calculator.Pallet{
			Footprint:      calculator.Footprint{Length: 1200, Width: 1000},
			MaxStackHeight: 1800,
			MaxWeight:      1000,
			DeckHeight:     144,
			TareWeight:     33,
		},
	},
	{
		Name:        "GMA",
		Description: "North American GMA 48x40 in",
		Pallet: calculator.Pallet{
			Footprint:      calculator.Footprint{Length: 1219.2, Width: 1016},
			MaxStackHeight: 1829, // 72 in
			MaxWeight:      1247, // 2750 lb
			DeckHeight:     140,
			TareWeight:     17,
		},
	},
	{
		Name:        "AU",
		Description: "Australian standard 1165x1165 mm",
		Pallet: calculator.Pallet{
			Footprint:      calculator.Footprint{Length: 1165, Width: 1165},
			MaxStackHeight: 1800,
			MaxWeight:      1000,
			DeckHeight:     150,
			TareWeight:     35,
		},
	},
}

// Storage provides access to the pallet and container presets offered to callers.
type Storage interface {
	GetPallets() ([]PalletPreset, error)
	GetPallet(name string) (PalletPreset, error)
	SetPallets(presets []PalletPreset) error
	GetContainers() ([]calculator.Container, error)
	GetContainer(containerType calculator.ContainerType) (calculator.Container, error)
}

// MemoryStorage keeps presets in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu      sync.RWMutex
	pallets []PalletPreset
}

// NewMemoryStorage initialises storage with a copy of the default pallet presets.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		pallets: cloneAndSort(defaultPallets),
	}
}

// DefaultPallets returns a copy of the default pallet presets.
func DefaultPallets() []PalletPreset {
	return cloneAndSort(defaultPallets)
}

// GetPallets returns a defensive copy of the configured pallet presets, sorted by name.
func (s *MemoryStorage) GetPallets() ([]PalletPreset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAndSort(s.pallets), nil
}

// GetPallet looks up a pallet preset by name, case-insensitively.
func (s *MemoryStorage) GetPallet(name string) (PalletPreset, error) {
	key := strings.TrimSpace(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.pallets {
		if strings.EqualFold(p.Name, key) {
			return p, nil
		}
	}
	return PalletPreset{}, fmt.Errorf("%w: pallet %q", ErrPresetNotFound, name)
}

// SetPallets validates, normalises, and stores the provided pallet presets.
func (s *MemoryStorage) SetPallets(presets []PalletPreset) error {
	normalized, err := normalizePallets(presets)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pallets = normalized
	s.mu.Unlock()

	return nil
}

// GetContainers returns the standard container types.
func (s *MemoryStorage) GetContainers() ([]calculator.Container, error) {
	return calculator.StandardContainers(), nil
}

// GetContainer returns the interior and payload of a standard container type.
func (s *MemoryStorage) GetContainer(containerType calculator.ContainerType) (calculator.Container, error) {
	c, ok := calculator.StandardContainer(containerType)
	if !ok {
		return calculator.Container{}, fmt.Errorf("%w: container %q", ErrPresetNotFound, containerType)
	}
	return c, nil
}

func cloneAndSort(src []PalletPreset) []PalletPreset {
	if len(src) == 0 {
		return []PalletPreset{}
	}

	out := make([]PalletPreset, len(src))
	copy(out, src)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalizePallets(presets []PalletPreset) ([]PalletPreset, error) {
	if len(presets) == 0 || len(presets) > maxPallets {
		return nil, ErrInvalidPallets
	}

	seen := make(map[string]struct{}, len(presets))
	out := make([]PalletPreset, 0, len(presets))
	for _, p := range presets {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: preset name is empty", ErrInvalidPallets)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate preset %q", ErrInvalidPallets, p.Name)
		}
		seen[key] = struct{}{}
		if err := p.Pallet.Validate(); err != nil {
			return nil, fmt.Errorf("%w: preset %q: %v", ErrInvalidPallets, p.Name, err)
		}
		out = append(out, p)
	}
	return cloneAndSort(out), nil
}
