package main

// Run executes the predict command.
func (c *PredictCmd) Run(deps *Dependencies) error {
	view, err := deps.Predictor.Predict(deps.Ctx, c.Symptoms, &c.Lat, &c.Lng)
	if err != nil {
		return reportError(deps.Stderr, err)
	}

	return writeJSON(deps.Stdout, view)
}
