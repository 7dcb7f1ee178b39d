package poi

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Resolver looks up the metadata of a picked area. Concurrent lookups of the
// same area share one request.
type Resolver struct {
	client *Client
	group  singleflight.Group
	log    *zap.Logger
}

// NewResolver creates a resolver backed by client.
func NewResolver(client *Client, log *zap.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// Resolve returns the POI whose id is the area identifier. A caller whose
// ctx ends stops waiting, but the shared request keeps running for the other
// callers until the client timeout.
func (r *Resolver) Resolve(ctx context.Context, areaID string) (POI, error) {
	ch := r.group.DoChan(areaID, func() (any, error) {
		return r.client.Get(context.WithoutCancel(ctx), areaID)
	})

	select {
	case <-ctx.Done():
		return POI{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return POI{}, res.Err
		}
		if res.Shared {
			r.log.Debug("shared area lookup", zap.String("area", areaID))
		}
		return res.Val.(POI), nil
	}
}
