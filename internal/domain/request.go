package domain

import "net"

// GeoPoint is the geolocation attributes resolved for a client IP. Known is
// false when the lookup produced nothing, in which case the dimension store
// substitutes sentinel values.
type GeoPoint struct {
	City       string
	Region     string
	Country    string
	Continent  string
	PostalCode string
	Latitude   float64
	Longitude  float64
	Known      bool
}

// RequestInfo is the per-request client context threaded through the
// pipelines and into the analytics fact row.
type RequestInfo struct {
	Host      string
	UserAgent string
	Referer   string
	IP        net.IP
	IPGlobal  bool
	Geo       GeoPoint
}

// IPString returns the exploded client address, or "" when unresolved.
func (r *RequestInfo) IPString() string {
	if r == nil || r.IP == nil {
		return ""
	}
	return r.IP.String()
}
