//go:generate go run go.uber.org/mock/mockgen -source=connection.go -destination=../../internal/mocks/mock_connection.go -package=mocks

package interfaces

// Connection is one live transport session owned by exactly one user.
type Connection interface {
	// GetConnectionID returns the opaque per-session token, unique among live
	// connections.
	GetConnectionID() string

	// GetUserID returns the identity the connection was attributed to.
	GetUserID() string

	// WriteJSON queues v for delivery. Implementations must be safe for
	// concurrent use and must not block indefinitely.
	WriteJSON(v any) error

	// Close releases the transport. Calling it more than once is a no-op.
	Close() error
}
