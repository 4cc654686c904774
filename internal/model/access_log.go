package model

// AccessLog is one entry of the team access log. The API returns entries
// most recent first.
type AccessLog struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	DateFirst int64  `json:"date_first"` // epoch seconds of the first activity in the window
	DateLast  int64  `json:"date_last"`  // epoch seconds of the last activity in the window
	Count     int    `json:"count"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	ISP       string `json:"isp"`
	Country   string `json:"country"`
	Region    string `json:"region"`
}
