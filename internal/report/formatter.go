package report

import (
	"time"

	"basegraph.app/lastseen/internal/model"
)

// NoLoginsPlaceholder replaces the LastLogin sentinel in reports.
const NoLoginsPlaceholder = "no logins found"

// FormatLastLogin renders an epoch as an RFC 3339 UTC timestamp, or the
// placeholder for the sentinel.
func FormatLastLogin(epoch int64) string {
	if epoch == model.NoLogin {
		return NoLoginsPlaceholder
	}
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}

// FormatLastLogins projects the working set to last-login report rows in
// directory order.
func FormatLastLogins(ws *model.WorkingSet) []Row {
	members := ws.Members()
	rows := make([]Row, 0, len(members))
	for _, m := range members {
		rows = append(rows, append(memberCells(m),
			Cell{Name: "last_login", Value: FormatLastLogin(m.LastLogin)},
		))
	}
	return rows
}

// FormatMembers projects the working set to directory rows without login data.
func FormatMembers(ws *model.WorkingSet) []Row {
	members := ws.Members()
	rows := make([]Row, 0, len(members))
	for _, m := range members {
		rows = append(rows, memberCells(m))
	}
	return rows
}

func memberCells(m model.Member) Row {
	return Row{
		{Name: "id", Value: m.ID},
		{Name: "name", Value: m.Name},
		{Name: "display_name", Value: m.Profile.DisplayName},
		{Name: "real_name", Value: m.Profile.RealName},
		{Name: "title", Value: m.Profile.Title},
		{Name: "email", Value: m.Profile.Email},
	}
}

// FormatAccessLogs projects raw access log entries to rows. Epochs and
// counts stay numeric.
func FormatAccessLogs(entries []model.AccessLog) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			{Name: "user_id", Value: e.UserID},
			{Name: "username", Value: e.Username},
			{Name: "date_first", Value: e.DateFirst},
			{Name: "date_last", Value: e.DateLast},
			{Name: "count", Value: int64(e.Count)},
			{Name: "ip", Value: e.IP},
			{Name: "user_agent", Value: e.UserAgent},
			{Name: "isp", Value: e.ISP},
			{Name: "country", Value: e.Country},
			{Name: "region", Value: e.Region},
		})
	}
	return rows
}
