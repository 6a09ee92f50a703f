// Package delivery defines the transports exposing the application.
package delivery

import "context"

// Delivery is a serving surface started by the application entrypoint.
type Delivery interface {
	Serve(ctx context.Context) error
}
