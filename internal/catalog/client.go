package catalog

import "context"

// ItemType classifies a catalog item by how it can be deployed to
type ItemType string

const (
	// ItemTypeWarehouse is a writable warehouse that accepts full deployments
	ItemTypeWarehouse ItemType = "warehouse"
	// ItemTypeVirtualizedEndpoint is a read-only endpoint over data owned
	// elsewhere; base tables must not be deployed to it
	ItemTypeVirtualizedEndpoint ItemType = "virtualized_endpoint"
	// ItemTypeUnknown is returned when the catalog does not know the item
	ItemTypeUnknown ItemType = "unknown"
)

// Client is the reference-catalog boundary. References returns the distinct
// warehouse names referenced cross-warehouse by any object inside the given
// warehouse. ItemType classifies a catalog item so the publisher can decide
// which object categories to suppress.
type Client interface {
	References(ctx context.Context, warehouse string) ([]string, error)
	ItemType(ctx context.Context, name string) (ItemType, error)
}
