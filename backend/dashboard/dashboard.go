// Package dashboard summarizes the signed in user's activity.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/geo"
	"mangrovewatch/backend/report"
)

var ErrNotAuthenticated = report.ErrNotAuthenticated

type Stats struct {
	ReportsSubmitted int
	PhotosUploaded   int
	LocationsMapped  int
}

type View struct {
	Welcome string
	User    api.User
	Stats   Stats
	Recent  []api.Report // Newest first.
}

const recentLimit = 5

func Build(ctx context.Context, users report.UserSource, repo *report.Repository) (*View, error) {
	u, ok := users.User()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	mine, err := repo.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	v := &View{
		Welcome: fmt.Sprintf("Welcome, %s!", u.Username),
		User:    u,
		Stats:   computeStats(mine),
	}
	for i := len(mine) - 1; i >= 0 && len(v.Recent) < recentLimit; i-- {
		v.Recent = append(v.Recent, mine[i])
	}
	return v, nil
}

func computeStats(reports []api.Report) Stats {
	s := Stats{ReportsSubmitted: len(reports)}
	places := map[string]struct{}{}
	for _, r := range reports {
		if r.Photo != "" {
			s.PhotosUploaded++
		}
		if c, ok := report.Position(r); ok {
			places[geo.CellToken(c)] = struct{}{}
		} else if loc := strings.TrimSpace(r.Location); loc != "" {
			places[loc] = struct{}{}
		}
	}
	s.LocationsMapped = len(places)
	return s
}

func (v *View) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n\n", v.Welcome)
	fmt.Fprintf(tw, "Username:\t%s\n", v.User.Username)
	fmt.Fprintf(tw, "Phone:\t%s\n", v.User.Phone)
	fmt.Fprintf(tw, "User ID:\t%s\n\n", v.User.ID)
	fmt.Fprintf(tw, "Reports submitted:\t%d\n", v.Stats.ReportsSubmitted)
	fmt.Fprintf(tw, "Photos uploaded:\t%d\n", v.Stats.PhotosUploaded)
	fmt.Fprintf(tw, "Locations mapped:\t%d\n", v.Stats.LocationsMapped)
	if len(v.Recent) > 0 {
		fmt.Fprintf(tw, "\nRecent reports:\n")
		for _, r := range v.Recent {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.Timestamp, r.Severity, r.Location, r.Status)
		}
	}
	return tw.Flush()
}

// IsNotAuthenticated reports whether err came from a missing session.
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}
