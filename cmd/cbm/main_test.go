package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/cbm-calculator/internal/calculator"
	"github.com/eugenenazirov/cbm-calculator/internal/storage"
	"github.com/eugenenazirov/cbm-calculator/internal/units"
)

// flags renders a 60x40x30 cm, 10 kg, 100 box shipment as CLI arguments with
// the given flags replaced or added. kingpin rejects repeated flags.
func flags(overrides map[string]string, extra ...string) []string {
	values := map[string]string{
		"length": "60", "width": "40", "height": "30", "unit": "cm",
		"weight": "10", "weight-unit": "kg", "quantity": "100",
	}
	for k, v := range overrides {
		values[k] = v
	}
	args := make([]string, 0, len(values)+len(extra))
	for _, k := range []string{"length", "width", "height", "unit", "weight", "weight-unit", "quantity", "pallet", "container"} {
		if v, ok := values[k]; ok {
			args = append(args, "--"+k+"="+v)
		}
	}
	return append(args, extra...)
}

func TestRunPalletizedJSON(t *testing.T) {
	var out bytes.Buffer
	args := flags(map[string]string{"pallet": "eur2"})
	if err := run(args, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	var got output
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, out.String())
	}
	if got.Stacking == nil {
		t.Fatalf("expected stacking plan")
	}
	if got.Stacking.BoxesPerPallet != 24 || got.Stacking.PalletsNeeded != 5 {
		t.Fatalf("unexpected stacking plan %+v", *got.Stacking)
	}
	if got.Fit.ContainerType != calculator.Container20ft || got.Fit.PalletsPerContainer != 8 || got.Fit.LeftoverBoxes != 92 {
		t.Fatalf("unexpected fit %+v", got.Fit)
	}
	if got.Volume["totalVolume"] != 7.2 || got.Units["volume"] != "cbm" {
		t.Fatalf("unexpected volume %v %v", got.Volume, got.Units)
	}
}

func TestRunLooseYAML(t *testing.T) {
	var out bytes.Buffer
	args := flags(map[string]string{"weight": "22", "weight-unit": "lb", "container": "40ft"}, "--loose", "--volume-unit=cft", "-o", "yaml")
	if err := run(args, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	var got struct {
		Units    map[string]string `yaml:"units"`
		Stacking map[string]any    `yaml:"stacking"`
		Fit      struct {
			Mode              string `yaml:"mode"`
			ContainerType     string `yaml:"containerType"`
			BoxesPerContainer int    `yaml:"boxesPerContainer"`
		} `yaml:"fit"`
	}
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode YAML: %v\n%s", err, out.String())
	}
	if got.Stacking != nil {
		t.Fatalf("expected no stacking plan in loose mode")
	}
	if got.Fit.Mode != "loose" || got.Fit.ContainerType != "40ft" || got.Fit.BoxesPerContainer == 0 {
		t.Fatalf("unexpected fit %+v", got.Fit)
	}
	if got.Units["volume"] != "cft" {
		t.Fatalf("expected cft, got %s", got.Units["volume"])
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "missing unit", args: []string{"--length=1", "--width=1", "--height=1", "--weight=1", "--weight-unit=kg", "--quantity=1"}},
		{name: "unknown unit", args: flags(map[string]string{"unit": "furlong"}), wantErr: units.ErrInvalidUnit},
		{name: "weight unit for length", args: flags(map[string]string{"unit": "kg"}), wantErr: units.ErrInvalidUnit},
		{name: "unknown pallet", args: flags(map[string]string{"pallet": "NOPE"}), wantErr: storage.ErrPresetNotFound},
		{name: "zero quantity", args: flags(map[string]string{"quantity": "0"}), wantErr: calculator.ErrInvalidQuantity},
		{name: "oversized box", args: flags(map[string]string{"length": "130"}), wantErr: calculator.ErrBoxExceedsPallet},
		{name: "bad container", args: flags(map[string]string{"container": "45ft"})},
		{name: "infinite length", args: flags(map[string]string{"length": "Inf"}), wantErr: units.ErrNonFinite},
		{
			name:    "volume overflows",
			args:    flags(map[string]string{"length": "1e103", "width": "1e103", "height": "1e103", "unit": "mm"}, "--loose"),
			wantErr: calculator.ErrInvalidDimension,
		},
		{
			name:    "microscopic box",
			args:    flags(map[string]string{"length": "1e-6", "width": "1e-6", "height": "1e-6", "unit": "mm"}, "--loose"),
			wantErr: calculator.ErrCountOutOfRange,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tc.args, &out)
			if err == nil {
				t.Fatalf("expected error, got output %s", out.String())
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestWriteJSONUsesFieldNames(t *testing.T) {
	var out bytes.Buffer
	if err := write(&out, output{Fit: calculator.FitReport{ContainersNeeded: 2}}, "json"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	if !strings.Contains(out.String(), `"containersNeeded": 2`) {
		t.Fatalf("unexpected output %s", out.String())
	}
}
