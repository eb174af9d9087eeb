package plex

// MediaContainer is the root container for Plex API responses
type MediaContainer struct {
	Size              int         `json:"size"`
	TotalSize         int         `json:"totalSize,omitempty"`
	Offset            int         `json:"offset,omitempty"`
	MachineIdentifier string      `json:"machineIdentifier,omitempty"` // /identity only
	Version           string      `json:"version,omitempty"`           // /identity only
	Directory         []Directory `json:"Directory,omitempty"`
	Metadata          []Metadata  `json:"Metadata,omitempty"`
}

// Guid represents an external identifier (IMDB, TMDB, TVDB, etc.)
type Guid struct {
	ID string `json:"id"` // e.g. "imdb://tt1234567", "tmdb://12345", "tvdb://12345"
}

// Directory represents a library section
type Directory struct {
	Key              string `json:"key"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Agent            string `json:"agent,omitempty"`
	UpdatedAt        int64  `json:"updatedAt,omitempty"`
	CreatedAt        int64  `json:"createdAt,omitempty"`
	ContentChangedAt int64  `json:"contentChangedAt,omitempty"`
}

// Metadata represents a movie in a section listing, or a play in the history listing
type Metadata struct {
	RatingKey    string  `json:"ratingKey"`
	Key          string  `json:"key"`
	GUID         string  `json:"guid,omitempty"` // Primary GUID, agent-dependent
	Guids        []Guid  `json:"Guid,omitempty"` // External IDs (IMDB, TMDB, TVDB)
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Year         int     `json:"year,omitempty"`
	UserRating   float64 `json:"userRating,omitempty"` // 0-10, set by the account owner
	ViewCount    int     `json:"viewCount,omitempty"`
	LastViewedAt int64   `json:"lastViewedAt,omitempty"`
	ViewedAt     int64   `json:"viewedAt,omitempty"` // history entries only, unix seconds
	AccountID    int     `json:"accountID,omitempty"`
}

// APIResponse wraps the MediaContainer for JSON unmarshaling
type APIResponse struct {
	MediaContainer MediaContainer `json:"MediaContainer"`
}

// SignInResponse is the plex.tv reply to a username/password sign-in
type SignInResponse struct {
	User struct {
		ID        int    `json:"id"`
		UUID      string `json:"uuid"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		AuthToken string `json:"authToken"`
	} `json:"user"`
}

// Resource is one device registered to a plex.tv account
type Resource struct {
	Name             string       `json:"name"`
	ClientIdentifier string       `json:"clientIdentifier"`
	AccessToken      string       `json:"accessToken"`
	Provides         string       `json:"provides"`
	Owned            bool         `json:"owned"`
	Product          string       `json:"product"`
	ProductVersion   string       `json:"productVersion"`
	Connections      []Connection `json:"connections"`
}

// Connection is one address a resource can be reached at
type Connection struct {
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
	Port     int    `json:"port"`
	URI      string `json:"uri"`
	Local    bool   `json:"local"`
	Relay    bool   `json:"relay"`
}
