package calculator

type engine struct{}

// New creates a Calculator that runs the volume, stacking and container stages in order.
func New() Calculator {
	return &engine{}
}

// Calculate validates every input, then runs the pipeline. Any failure replaces
// the whole report; no partial results are returned.
func (e *engine) Calculate(req Request) (Report, error) {
	if err := req.Validate(); err != nil {
		return Report{}, err
	}

	volume, err := ComputeVolume(req.Box)
	if err != nil {
		return Report{}, err
	}

	if req.Mode == ModeLoose {
		fit, err := FitLoose(req.Box, req.Container)
		if err != nil {
			return Report{}, err
		}
		return BuildReport(volume, nil, fit), nil
	}

	plan, err := PlanPallet(req.Box, req.Pallet)
	if err != nil {
		return Report{}, err
	}
	fit, err := FitPallets(req.Box, req.Pallet, plan, req.Container)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(volume, &plan, fit), nil
}

// Calculate runs a single calculation with a throwaway engine.
func Calculate(req Request) (Report, error) {
	return New().Calculate(req)
}
