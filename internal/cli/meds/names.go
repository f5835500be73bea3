package meds

import (
	"fmt"
	"sort"

	"github.com/julianstephens/medweek/internal/cli"
)

// NamesCmd prints the normalized drug names already scheduled, one per line.
type NamesCmd struct{}

func (c *NamesCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	names, err := ctx.Schedules.ExistingDrugNames(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to get drug names: %w", err)
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		ctx.Println(name)
	}
	return nil
}
