package config

import "errors"

var (
	// ErrInvalidDriver is returned when the database driver is not supported
	ErrInvalidDriver = errors.New("database.driver must be 'sqlite' or 'postgres'")
	// ErrEmptyDSN is returned when the database DSN is empty
	ErrEmptyDSN = errors.New("database.dsn cannot be empty")
	// ErrEmptyDomain is returned when the tracked site domain is empty
	ErrEmptyDomain = errors.New("site.domain cannot be empty")
	// ErrInvalidTimezone is returned when site.timezone cannot be loaded
	ErrInvalidTimezone = errors.New("site.timezone is not a valid IANA timezone")
	// ErrInvalidBatchSize is returned when the SERP batch size is outside 1..100
	ErrInvalidBatchSize = errors.New("providers.dataforseo.batch_size must be between 1 and 100")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("providers.request_timeout must be greater than 0")
	// ErrInvalidRowLimit is returned when the search console row cap is not greater than 0
	ErrInvalidRowLimit = errors.New("providers.search_console.row_limit must be greater than 0")
	// ErrEmptyLocationSlug is returned when a location mapping has no slug
	ErrEmptyLocationSlug = errors.New("locations[].slug cannot be empty")
	// ErrDuplicateLocation is returned when a slug is mapped twice
	ErrDuplicateLocation = errors.New("locations[].slug must be unique")
	// ErrEmptyCronSecret is returned when serving without a trigger secret
	ErrEmptyCronSecret = errors.New("server.cron_secret is required to serve trigger endpoints")
)
