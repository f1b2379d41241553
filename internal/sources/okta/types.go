package okta

// User is a directory user as returned by /api/v1/users.
type User struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	Created     string      `json:"created,omitempty"`
	LastUpdated string      `json:"lastUpdated,omitempty"`
	Profile     UserProfile `json:"profile"`
}

// UserProfile holds the standard Okta user profile attributes.
type UserProfile struct {
	Login       string `json:"login"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
	Title       string `json:"title"`
	Department  string `json:"department"`
}

// Group is a directory group as returned by /api/v1/groups.
type Group struct {
	ID      string       `json:"id"`
	Type    string       `json:"type"`
	Profile GroupProfile `json:"profile"`

	// Members holds member logins when membership fetching is enabled.
	Members []string `json:"-"`
}

// GroupProfile holds the standard Okta group profile attributes.
type GroupProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListRequest carries the optional query parameters of a list call.
type ListRequest struct {
	Q      string // simple name/email prefix search
	Filter string // Okta filter expression
	Search string // Okta search expression
}
