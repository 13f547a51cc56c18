package publisher

import "nattapol/villaharvester/internal/listing"

// Publisher represents a service for publishing listing snapshots
type Publisher interface {
	// PublishListing publishes one merged listing snapshot to a stream
	PublishListing(snapshot listing.Snapshot) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
