//go:generate go run go.uber.org/mock/mockgen -source=delivery.go -destination=../../internal/mocks/mock_delivery.go -package=mocks

package interfaces

import (
	"context"

	"intouch/pkg/types"
)

// GroupChannel is the registry-independent per-user delivery channel used
// when no live connection for the user is known to this process.
type GroupChannel interface {
	Publish(ctx context.Context, userID string, event types.Event) error
}
