package geoip

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/oschwald/maxminddb-golang"
)

// Resolver maps client addresses to a coarse location for request logs.
// A Resolver without a database answers every lookup with an empty Location.
type Resolver struct {
	db *maxminddb.Reader
}

type Location struct {
	Country string
	City    string
}

type geoResult struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
}

func New(dbPath string) (*Resolver, error) {
	if dbPath == "" {
		return &Resolver{}, nil
	}
	db, err := maxminddb.Open(dbPath)
	if err != nil {
		slog.Warn("geoip: failed to open database, request geolocation disabled", "path", dbPath, "error", err)
		return &Resolver{}, nil
	}
	slog.Info("geoip: loaded database", "path", dbPath)
	return &Resolver{db: db}, nil
}

func (r *Resolver) Enabled() bool { return r != nil && r.db != nil }

// Locate looks up an IP address. Unknown or unparsable addresses yield an
// empty Location.
func (r *Resolver) Locate(ipStr string) Location {
	if !r.Enabled() || ipStr == "" {
		return Location{}
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}
	}
	var result geoResult
	if err := r.db.Lookup(ip, &result); err != nil {
		return Location{}
	}
	return Location{Country: result.Country.ISOCode, City: result.City.Names["en"]}
}

// LocateRequest locates the client of r.
func (r *Resolver) LocateRequest(req *http.Request) Location {
	return r.Locate(ClientIP(req))
}

func (r *Resolver) Close() error {
	if r.Enabled() {
		return r.db.Close()
	}
	return nil
}

// ClientIP returns the connection address without its port. Forwarding
// headers are ignored here; a trusted proxy setup rewrites RemoteAddr first.
func ClientIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
