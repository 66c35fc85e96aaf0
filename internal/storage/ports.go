package storage

import "context"

// DefaultKey is the key the transaction collection is stored under.
const DefaultKey = "@gofinances:transactions"

// Ports for outbound storage adapters.
type (
	// Reader is an asynchronous read-only key/value store. A missing key is
	// reported with found=false and a nil error.
	Reader interface {
		Get(ctx context.Context, key string) (value string, found bool, err error)
	}

	// Writer replaces the value stored under key.
	Writer interface {
		Set(ctx context.Context, key, value string) error
	}

	Store interface {
		Reader
		Writer
	}

	// Pinger is implemented by stores that hold a connection worth checking.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
