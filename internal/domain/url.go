package domain

// LongURL is the stored record of a distinct submitted target address. Rows
// are immutable after creation except for IsActive.
type LongURL struct {
	ID                int64
	Hash              int64
	LongURL           string
	OriginallyEncoded bool
	Title             string
	Description       string
	ImageURL          string
	Byline            string
	SiteName          string
	MetaStatus        int
	IsActive          bool
}

// ShortURL is the generated alias owned by exactly one LongURL. A LongURL
// has at most one active ShortURL; deleting the LongURL cascades.
type ShortURL struct {
	ID               int64
	Hash             int64
	LongURLID        int64
	ShortURL         string
	PathSize         int
	CompressionRatio float64
	IsActive         bool
}

// PageMeta carries the metadata scraped from a long URL's target document.
type PageMeta struct {
	Title       string
	Description string
	ImageURL    string
	SiteName    string
	StatusCode  int
}
