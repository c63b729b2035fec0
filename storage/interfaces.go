package storage

import (
	"context"

	"cian-feed/models"
)

// ListingSource is the interface any listing store must satisfy.
type ListingSource interface {
	// FetchListings returns all listing rows in store order.
	FetchListings(ctx context.Context) ([]*models.ListingRecord, error)
	// FetchAgents returns agent rows for the given identifier set,
	// keyed by id. Unknown ids are simply absent from the result.
	FetchAgents(ctx context.Context, ids []string) (map[string]*models.AgentRecord, error)
	// CountListings returns the number of listing rows.
	CountListings(ctx context.Context) (int, error)
	Close() error
}

// AttachAgents resolves the agent foreign keys of a batch against a
// source in one lookup and attaches the rows to their listings. Listings
// without a matching agent stay valid with a nil Agent.
func AttachAgents(ctx context.Context, src ListingSource, listings []*models.ListingRecord) error {
	idSet := make(map[string]struct{})
	var ids []string
	for _, r := range listings {
		id := r.AgentID.String()
		if id == "" {
			continue
		}
		if _, ok := idSet[id]; ok {
			continue
		}
		idSet[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	agents, err := src.FetchAgents(ctx, ids)
	if err != nil {
		return err
	}
	for _, r := range listings {
		r.Agent = agents[r.AgentID.String()]
	}
	return nil
}
