package main

import (
	"context"

	"github.com/desertthunder/listbridge/internal/services"
	"github.com/urfave/cli/v3"
)

// Quota prints today's advisory YouTube Data API usage.
func (r *Runner) Quota(ctx context.Context, cmd *cli.Command) error {
	tracker, err := r.quotaTracker()
	if err != nil {
		return err
	}

	u := tracker.Usage(ctx)
	r.writePlainHeader("YouTube Data API quota (UTC day)")
	r.writePlain("Used: %d units\n", u.Used)
	r.writePlain("Remaining: %d of %d\n", u.Remaining, u.Daily)
	r.writePlain("Searches left: ~%d\n", u.Remaining/services.CostSearchList)
	return nil
}
