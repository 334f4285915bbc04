package api

// Cache-Control header values.
const (
	// CacheOneDay is sent with stamped picture URLs, which change whenever
	// the picture does.
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-cache"
)

// Media types accepted on write routes.
const (
	contentTypeJSON = "application/json"
)
