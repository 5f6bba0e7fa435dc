package calculator

// BuildReport assembles the stage outputs into one report. The stacking plan is
// copied so the report never aliases caller-owned values.
func BuildReport(volume Volume, plan *StackingPlan, fit FitReport) Report {
	r := Report{Volume: volume, Fit: fit}
	if plan != nil {
		p := *plan
		r.Stacking = &p
	}
	return r
}
