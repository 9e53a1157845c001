package main

import "github.com/healthbuddy/backend/internal/domain/entities"

// Run executes the find command.
func (c *FindCmd) Run(deps *Dependencies) error {
	resp, err := deps.Finder.FindDoctors(deps.Ctx, entities.LookupRequest{
		Symptoms: &c.Symptoms,
		Lat:      &c.Lat,
		Lng:      &c.Lng,
	})
	if err != nil {
		return reportError(deps.Stderr, err)
	}

	return writeJSON(deps.Stdout, resp)
}
