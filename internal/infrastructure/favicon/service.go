package favicon

import "time"

// Options configures a Service.
type Options struct {
	CacheDir     string
	ExportSize   int
	FetchTimeout time.Duration
	MaxIconBytes int64
}

// Service bundles the icon fetcher and the export cache.
type Service struct {
	Fetcher *Fetcher
	Cache   *Cache
}

// NewService creates the fetcher and cache described by opts.
func NewService(opts Options) *Service {
	return &Service{
		Fetcher: NewFetcher(opts.FetchTimeout, opts.MaxIconBytes),
		Cache:   NewCache(opts.CacheDir, opts.ExportSize),
	}
}

// Close flushes pending icon exports.
func (s *Service) Close() {
	s.Cache.Close()
}
