package cart

import (
	"context"
	"encoding/json"
)

// DefaultNamespace prefixes the storage key when none is configured.
const DefaultNamespace = "@GoMarketpace"

// Bucket is the durable key-value store the cart writes through to.
type Bucket interface {

	// Get the value stored under key. A missing key yields nil, nil.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// StorageKey for the cart inside the given namespace.
func StorageKey(namespace string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + ":cart"
}

// Encode a snapshot into its persisted form. An empty cart is stored as [].
func Encode(s Snapshot) ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	return json.Marshal(s)
}

// Decode the persisted form. Items that break the cart invariants (duplicated
// id, quantity below one) make the whole value malformed.
func Decode(key string, data []byte) (Snapshot, error) {
	var items Snapshot
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &MalformedState{Key: key, Err: err}
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, &MalformedState{Key: key, Err: errQuantity}
		}
		if _, dup := seen[item.ID]; dup {
			return nil, &MalformedState{Key: key, Err: errDuplicateID}
		}
		seen[item.ID] = struct{}{}
	}

	if items == nil {
		items = Snapshot{}
	}
	return items, nil
}
