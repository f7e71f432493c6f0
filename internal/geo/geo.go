// Package geo resolves the client address of a request and enriches it with
// geolocation attributes from a local GeoIP2 database.
package geo

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"go-shortlink/internal/domain"
)

// Locator looks up geolocation attributes for an IP address.
type Locator interface {
	Locate(ip net.IP) (domain.GeoPoint, error)
}

// GeoIP2Locator reads a MaxMind city database.
type GeoIP2Locator struct {
	db *geoip2.Reader
}

// NewGeoIP2Locator opens the database at path.
func NewGeoIP2Locator(path string) (*GeoIP2Locator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &GeoIP2Locator{db: db}, nil
}

// Close releases the database reader.
func (g *GeoIP2Locator) Close() error {
	return g.db.Close()
}

// Locate returns the city-level attributes for ip. A lookup that finds no
// record is not an error; the result just has Known=false.
func (g *GeoIP2Locator) Locate(ip net.IP) (domain.GeoPoint, error) {
	rec, err := g.db.City(ip)
	if err != nil {
		return domain.GeoPoint{}, err
	}

	p := domain.GeoPoint{
		City:       rec.City.Names["en"],
		Country:    rec.Country.Names["en"],
		Continent:  rec.Continent.Names["en"],
		PostalCode: rec.Postal.Code,
		Latitude:   rec.Location.Latitude,
		Longitude:  rec.Location.Longitude,
	}
	if len(rec.Subdivisions) > 0 {
		p.Region = rec.Subdivisions[0].Names["en"]
	}
	p.Known = p.City != "" || p.Country != "" || p.PostalCode != ""
	return p, nil
}

// Resolver turns an inbound request into the client context used by the
// pipelines. A nil locator disables geolocation.
type Resolver struct {
	locator Locator
	log     *zap.Logger
}

// NewResolver builds a Resolver.
func NewResolver(locator Locator, log *zap.Logger) *Resolver {
	return &Resolver{locator: locator, log: log}
}

// Describe extracts host, user agent, referer and the unwound client IP from
// r, then geolocates global addresses. Geolocation failures degrade to an
// unknown GeoPoint; only an unresolvable IP is an error.
func (res *Resolver) Describe(r *http.Request) (*domain.RequestInfo, error) {
	info := &domain.RequestInfo{
		Host:      r.Host,
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	}

	ip, err := ClientIP(r)
	if err != nil {
		return nil, err
	}
	info.IP = ip
	info.IPGlobal = isGlobal(ip)

	if res.locator != nil && info.IPGlobal {
		point, err := res.locator.Locate(ip)
		if err != nil {
			res.log.Warn("geolocation lookup failed",
				zap.String("ip", ip.String()), zap.Error(err))
		} else {
			info.Geo = point
		}
	}
	return info, nil
}

// ClientIP resolves the true client address, unwinding proxy chains in
// X-Forwarded-For before falling back to the socket address and X-Real-Ip.
func ClientIP(r *http.Request) (net.IP, error) {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return resolveChain(strings.Split(xff, ","))
	}
	if r.RemoteAddr != "" {
		host := r.RemoteAddr
		if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			host = h
		}
		if ip := net.ParseIP(host); ip != nil {
			return ip, nil
		}
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		if ip := net.ParseIP(strings.TrimSpace(real)); ip != nil {
			return ip, nil
		}
		return nil, fmt.Errorf("unparseable X-Real-Ip %q", real)
	}
	return nil, errors.New("no client address on request")
}

// resolveChain picks the client address out of a forwarded-for list: a
// loopback entry is taken as-is, leading private proxy hops are skipped, and
// the first global address wins. A chain of only private addresses yields
// its last entry.
func resolveChain(chain []string) (net.IP, error) {
	var last net.IP
	for _, s := range chain {
		ip := net.ParseIP(strings.TrimSpace(s))
		if ip == nil {
			return nil, fmt.Errorf("unparseable forwarded address %q", s)
		}
		if ip.IsLoopback() {
			return ip, nil
		}
		if ip.IsPrivate() {
			last = ip
			continue
		}
		return ip, nil
	}
	if last != nil {
		return last, nil
	}
	return nil, errors.New("empty forwarded-for chain")
}

func isGlobal(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsMulticast() || ip.IsUnspecified())
}
