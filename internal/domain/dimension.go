package domain

// DimensionKind identifies one of the normalized analytics dimensions.
type DimensionKind string

const (
	DimIP         DimensionKind = "ip"
	DimHost       DimensionKind = "host"
	DimReferer    DimensionKind = "referer"
	DimUserAgent  DimensionKind = "useragent"
	DimDevice     DimensionKind = "device"
	DimCity       DimensionKind = "city"
	DimRegion     DimensionKind = "region"
	DimCountry    DimensionKind = "country"
	DimContinent  DimensionKind = "continent"
	DimPostalCode DimensionKind = "postalcode"
)

// DimensionKinds lists every kind in fact-row column order.
var DimensionKinds = []DimensionKind{
	DimIP, DimHost, DimReferer, DimUserAgent, DimDevice,
	DimCity, DimRegion, DimCountry, DimContinent, DimPostalCode,
}

// DimensionRecord is a deduplicated reference value (IP address, host,
// referer, user agent, device or a geography attribute). Once IsMutable is
// cleared by a blacklist match the stored value is frozen: later requests
// carrying a different raw spelling for the same hash no longer update it.
type DimensionRecord struct {
	ID        int64
	Hash      int64
	Kind      DimensionKind
	Value     string
	IsMutable bool
}

// DimensionSet maps each resolved kind to its record for one request.
type DimensionSet map[DimensionKind]*DimensionRecord

// IDs returns the record id per kind, zero for absent kinds.
func (s DimensionSet) IDs() map[DimensionKind]int64 {
	ids := make(map[DimensionKind]int64, len(s))
	for k, rec := range s {
		if rec != nil {
			ids[k] = rec.ID
		}
	}
	return ids
}

// BlacklistEntry is one veto rule. A zero id in any dimension field is a
// wildcard that matches every value of that kind; non-zero fields must match
// exactly. All fields are ANDed together.
type BlacklistEntry struct {
	ID       int64
	IsActive bool
	DimIDs   map[DimensionKind]int64
}

// Matches reports whether this entry vetoes a request with the supplied
// dimension ids.
func (e *BlacklistEntry) Matches(ids map[DimensionKind]int64) bool {
	if !e.IsActive {
		return false
	}
	for kind, want := range e.DimIDs {
		if want == 0 {
			continue
		}
		got, ok := ids[kind]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// FactEvent is one immutable analytics row denormalized over the dimensions
// observed at event time.
type FactEvent struct {
	ID           int64
	EventDate    string // yyyymmdd
	EventTime    string // hhmiss
	EventType    EventType
	CID          string
	HTTPStatus   int
	Message      string
	LongURLID    int64
	ShortURLID   int64
	DimensionIDs map[DimensionKind]int64
}
