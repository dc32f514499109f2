package storage

// Keyword categories accepted by the catalog
var KeywordCategories = []string{
	"medicaid-planning",
	"estate-planning",
	"asset-protection",
	"guardianship",
	"elder-law-general",
	"long-term-care",
	"veterans-benefits",
	"trust-administration",
	"probate",
	"special-needs",
}

// Content piece types accepted by the catalog
var ContentTypes = []string{"blog", "service-page", "video", "resource"}

// Video platforms
const (
	PlatformYouTube = "youtube"
	PlatformBunny   = "bunny"
)

// Location is an office market
type Location struct {
	ID              int64   `yaml:"-"`
	Slug            string  `yaml:"slug"`
	Name            string  `yaml:"name"`
	ShortName       string  `yaml:"short_name"`
	Latitude        float64 `yaml:"latitude"`
	Longitude       float64 `yaml:"longitude"`
	RadiusMiles     float64 `yaml:"radius_miles"`
	MarketCharacter string  `yaml:"market_character"`
	GBPLocationID   string  `yaml:"gbp_location_id"` // Empty when the location has no Business Profile
}

// Keyword is a tracked search term scoped to one location
type Keyword struct {
	ID                  int64
	Keyword             string
	LocationID          int64
	LocationSlug        string
	Category            string
	IsPrimary           bool
	IsActive            bool
	TargetPosition      *int
	MonthlySearchVolume *int
}

// Competitor is a rival domain tracked within one location
type Competitor struct {
	ID         int64
	Name       string
	Domain     string
	LocationID int64
	IsActive   bool
}

// ContentPiece is a catalogued piece of site content
type ContentPiece struct {
	ID         int64
	Title      string
	Slug       string
	URL        string
	Type       string
	LocationID *int64
}

// KeywordRanking is the daily SERP snapshot for one keyword
type KeywordRanking struct {
	KeywordID         int64
	LocationID        int64
	RecordedDate      string
	Position          *int
	PreviousPosition  *int
	URL               string
	LocalPackPosition *int
	FeaturedSnippet   bool
}

// CompetitorRanking is the daily SERP snapshot for one competitor on one keyword
type CompetitorRanking struct {
	CompetitorID      int64
	KeywordID         int64
	RecordedDate      string
	Position          *int
	URL               string
	LocalPackPosition *int
}

// TopPage is one entry of the sitewide top pages list
type TopPage struct {
	Path   string `json:"path"`
	Visits int64  `json:"visits"`
}

// TrafficRecord is one day of web analytics. A nil LocationID means sitewide.
type TrafficRecord struct {
	RecordedDate   string
	LocationID     *int64
	Pageviews      int64
	Visits         int64
	UniqueVisitors int64
	AvgDuration    *float64
	BounceRate     *float64
	TopPages       []TopPage
}

// GBPRecord is one day of Business Profile performance for one location
type GBPRecord struct {
	LocationID        int64
	RecordedDate      string
	SearchesDirect    int64
	SearchesDiscovery int64
	SearchesTotal     int64
	ActionsWebsite    int64
	ActionsPhone      int64
	ActionsDirections int64
	ActionsTotal      int64
}

// SearchConsoleRecord is one (query, page) row of Search Console analytics
type SearchConsoleRecord struct {
	RecordedDate string
	Query        string
	Page         string
	LocationID   *int64
	Clicks       int64
	Impressions  int64
	CTR          float64
	Position     float64
}

// VideoMetric is one day of statistics for one video on one platform
type VideoMetric struct {
	ContentID       *int64
	Platform        string
	ExternalID      string
	RecordedDate    string
	Views           int64
	Likes           int64
	Comments        int64
	AvgViewDuration *float64
}
