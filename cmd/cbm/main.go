package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/cbm-calculator/internal/calculator"
	"github.com/eugenenazirov/cbm-calculator/internal/storage"
	"github.com/eugenenazirov/cbm-calculator/internal/units"
)

type options struct {
	length, width, height float64
	lengthUnit            string
	weight                float64
	weightUnit            string
	quantity              int
	allowTipping          bool
	pallet                string
	container             string
	loose                 bool
	volumeUnit            string
	output                string
}

type output struct {
	Units    map[string]string        `json:"units"`
	Volume   map[string]float64       `json:"volume"`
	Stacking *calculator.StackingPlan `json:"stacking,omitempty"`
	Fit      calculator.FitReport     `json:"fit"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "cbm:", err)
		if errors.Is(err, calculator.ErrBoxExceedsPallet) ||
			errors.Is(err, calculator.ErrPalletExceedsContainer) ||
			errors.Is(err, calculator.ErrBoxExceedsContainer) {
			os.Exit(3)
		}
		os.Exit(2)
	}
}

func newApp(opts *options) *kingpin.Application {
	app := kingpin.New("cbm", "CBM & Pallet Calculator - compute shipment volume, pallet stacking and container fit for one SKU")
	app.Flag("length", "Box length").Required().Float64Var(&opts.length)
	app.Flag("width", "Box width").Required().Float64Var(&opts.width)
	app.Flag("height", "Box height").Required().Float64Var(&opts.height)
	app.Flag("unit", "Unit of the box dimensions (mm, cm, m, in, ft)").Required().StringVar(&opts.lengthUnit)
	app.Flag("weight", "Weight of one box").Required().Float64Var(&opts.weight)
	app.Flag("weight-unit", "Unit of the box weight (g, kg, lb)").Required().StringVar(&opts.weightUnit)
	app.Flag("quantity", "Number of boxes").Required().IntVar(&opts.quantity)
	app.Flag("allow-tipping", "Allow boxes to be laid on their side").BoolVar(&opts.allowTipping)
	app.Flag("pallet", "Pallet preset (EUR1, EUR2, GMA, AU)").Default("EUR1").StringVar(&opts.pallet)
	app.Flag("container", "Container type").Default(string(calculator.Container20ft)).
		EnumVar(&opts.container, string(calculator.Container20ft), string(calculator.Container40ft), string(calculator.Container40ftHC))
	app.Flag("loose", "Floor-load boxes without pallets").BoolVar(&opts.loose)
	app.Flag("volume-unit", "Unit for reported volumes").Default(string(units.CubicMeter)).
		EnumVar(&opts.volumeUnit, string(units.CubicMeter), string(units.CubicFoot))
	app.Flag("output", "Output format").Short('o').Default("json").EnumVar(&opts.output, "json", "yaml")
	return app
}

func run(args []string, stdout io.Writer) error {
	var opts options
	app := newApp(&opts)
	app.Terminate(nil)
	app.UsageWriter(stdout)
	if _, err := app.Parse(args); err != nil {
		return err
	}

	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	report, err := calculator.Calculate(req)
	if err != nil {
		return err
	}

	out, err := newOutput(report, units.Unit(opts.volumeUnit))
	if err != nil {
		return err
	}
	return write(stdout, out, opts.output)
}

func buildRequest(opts options) (calculator.Request, error) {
	var box calculator.Box
	var err error
	if box.Dimension.Length, err = units.Length(opts.length, opts.lengthUnit); err != nil {
		return calculator.Request{}, err
	}
	if box.Dimension.Width, err = units.Length(opts.width, opts.lengthUnit); err != nil {
		return calculator.Request{}, err
	}
	if box.Dimension.Height, err = units.Length(opts.height, opts.lengthUnit); err != nil {
		return calculator.Request{}, err
	}
	if box.Weight, err = units.Weight(opts.weight, opts.weightUnit); err != nil {
		return calculator.Request{}, err
	}
	box.Quantity = opts.quantity
	box.AllowTipping = opts.allowTipping

	store := storage.NewMemoryStorage()
	container, err := store.GetContainer(calculator.ContainerType(opts.container))
	if err != nil {
		return calculator.Request{}, err
	}

	req := calculator.Request{Box: box, Container: container, Mode: calculator.ModePalletized}
	if opts.loose {
		req.Mode = calculator.ModeLoose
		return req, nil
	}

	preset, err := store.GetPallet(opts.pallet)
	if err != nil {
		return calculator.Request{}, err
	}
	req.Pallet = preset.Pallet
	return req, nil
}

func newOutput(report calculator.Report, volumeUnit units.Unit) (output, error) {
	unitVolume, err := units.VolumeFromCubicMillimeters(report.Volume.UnitVolume, volumeUnit)
	if err != nil {
		return output{}, err
	}
	totalVolume, err := units.VolumeFromCubicMillimeters(report.Volume.TotalVolume, volumeUnit)
	if err != nil {
		return output{}, err
	}
	return output{
		Units: map[string]string{
			"length": string(units.Millimeter),
			"weight": string(units.Kilogram),
			"volume": string(volumeUnit),
		},
		Volume: map[string]float64{
			"unitVolume":  units.Round(unitVolume, 6),
			"totalVolume": units.Round(totalVolume, 4),
			"totalWeight": units.Round(report.Volume.TotalWeight, 3),
		},
		Stacking: report.Stacking,
		Fit:      report.Fit,
	}, nil
}

// write renders out as indented JSON, or as YAML keyed by the same field names.
func write(w io.Writer, out output, format string) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if format != "yaml" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}
