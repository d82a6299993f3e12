package reqnet

import "context"

// RequestClientWrapper is the wrapper interface over the request-network
// gateway. The service never talks to the gateway directly, only through this
// interface, so tests can swap in a fake.
type RequestClientWrapper interface {
	// CreateRequest persists a new request on the network and returns it with
	// its assigned request id. The request may not be confirmed yet.
	CreateRequest(ctx context.Context, params CreateRequestParams) (*Request, error)
	// WaitForConfirmation blocks until the gateway reports the request as
	// persisted, or the context is done.
	WaitForConfirmation(ctx context.Context, requestID string) (*Request, error)
	// FromIdentity returns all requests associated with an address.
	FromIdentity(ctx context.Context, address string) ([]Request, error)
	// FromRequestID fetches a single request with its current balance. This is
	// also the refresh primitive: calling it again re-derives balance and
	// status from the gateway's view of the chain.
	FromRequestID(ctx context.Context, requestID string) (*Request, error)
}
