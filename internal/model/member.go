package model

// SlackbotID is the reserved ID of the platform's built-in bot user. It is
// not flagged is_bot by the API, so it is filtered by ID.
const SlackbotID = "USLACKBOT"

// NoLogin is the LastLogin sentinel for members with no observed login.
const NoLogin int64 = 0

type Member struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Profile   Profile `json:"profile"`
	Deleted   bool    `json:"deleted"`
	IsBot     bool    `json:"is_bot"`
	LastLogin int64   `json:"-"` // epoch seconds, NoLogin until an access log entry is merged
}

type Profile struct {
	DisplayName string `json:"display_name,omitempty"`
	RealName    string `json:"real_name,omitempty"`
	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Active reports whether the member belongs in the working set.
func (m Member) Active() bool {
	return !m.Deleted && !m.IsBot && m.ID != SlackbotID
}

func (m Member) HasLogin() bool {
	return m.LastLogin != NoLogin
}
