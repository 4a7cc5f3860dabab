// Package history defines the capped, per-identity analysis history. Each
// identity gets its own namespace; lists are newest-first and hold at most
// MaxItems entries, evicting the oldest on append.
package history

import (
	"context"
	"errors"
	"sort"

	"pemapp/internal/models"
)

// MaxItems is the per-namespace cap.
const MaxItems = 5

const (
	namespacePrefix = "pem_history_"
	guestNamespace  = "pem_history_guest"
)

// ErrNotFound is returned when an item id does not exist in the namespace.
var ErrNotFound = errors.New("history: item not found")

// Namespace derives the storage partition key for an identity. An empty
// email maps to the shared guest namespace.
func Namespace(identity models.Identity) string {
	if identity.IsGuest() {
		return guestNamespace
	}
	return namespacePrefix + identity.Email
}

// Store is the repository contract consumed by the handlers. Implementations
// are injected; nothing reaches a store through a global.
type Store interface {
	Append(ctx context.Context, namespace string, item models.HistoryItem) error
	List(ctx context.Context, namespace string) ([]models.HistoryItem, error)
	Get(ctx context.Context, namespace, id string) (models.HistoryItem, error)
	Remove(ctx context.Context, namespace, id string) error
}

// Trim orders items newest-first and drops everything beyond the cap.
func Trim(items []models.HistoryItem) []models.HistoryItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	return items
}
