package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"basegraph.app/lastseen/internal/model"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary condenses a finished working set for the operator.
type Summary struct {
	GeneratedAt   time.Time
	Horizon       time.Time
	InactiveSince time.Time
	Members       int
	WithLogins    int
	NeverLoggedIn int // no login between Horizon and GeneratedAt
	Inactive      int // last login before InactiveSince
	MostInactive  []model.Member
}

// Summarize counts logins in ws and picks up to limit members with the
// oldest last login, members without any login first.
func Summarize(ws *model.WorkingSet, now, horizon time.Time, inactiveDays, limit int) Summary {
	s := Summary{
		GeneratedAt:   now,
		Horizon:       horizon,
		InactiveSince: now.AddDate(0, 0, -inactiveDays),
	}

	members := ws.Members()
	s.Members = len(members)
	cutoff := s.InactiveSince.Unix()

	var stale []model.Member
	for _, m := range members {
		switch {
		case !m.HasLogin():
			s.NeverLoggedIn++
			stale = append(stale, m)
		case m.LastLogin < cutoff:
			s.WithLogins++
			s.Inactive++
			stale = append(stale, m)
		default:
			s.WithLogins++
		}
	}

	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].LastLogin < stale[j].LastLogin
	})
	if len(stale) > limit {
		stale = stale[:limit]
	}
	s.MostInactive = stale
	return s
}

// RenderSummary renders s as plain text tables in the style of the CLI.
func RenderSummary(s Summary) string {
	totals := newTable()
	totals.AppendHeader(table.Row{"MEMBERS", "WITH LOGINS", "NO LOGINS", "INACTIVE"})
	totals.AppendRow(table.Row{s.Members, s.WithLogins, s.NeverLoggedIn, s.Inactive})

	var b strings.Builder
	fmt.Fprintf(&b, "Access logs searched back to %s; inactive means no login since %s.\n\n",
		s.Horizon.UTC().Format(time.DateOnly),
		s.InactiveSince.UTC().Format(time.DateOnly),
	)
	b.WriteString(totals.Render())
	b.WriteString("\n")

	if len(s.MostInactive) == 0 {
		return b.String()
	}

	stale := newTable()
	stale.AppendHeader(table.Row{"ID", "NAME", "EMAIL", "LAST LOGIN", "LAST SEEN"})
	for _, m := range s.MostInactive {
		seen := "never within horizon"
		if m.HasLogin() {
			seen = humanize.RelTime(time.Unix(m.LastLogin, 0), s.GeneratedAt, "ago", "from now")
		}
		stale.AppendRow(table.Row{m.ID, m.Name, m.Profile.Email, FormatLastLogin(m.LastLogin), seen})
	}
	b.WriteString("\n")
	b.WriteString(stale.Render())
	b.WriteString("\n")
	return b.String()
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}
