package model

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// PhotoStorage keeps uploaded item photos as objects.
type PhotoStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Transactor runs fn so that every store call made with the passed context
// commits or rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PartitionDropper removes everything a component keeps for one user.
type PartitionDropper interface {
	DropPartition(ctx context.Context, userID uuid.UUID) error
}

// Namespaces of per-user persisted data.
const (
	NamespaceCollection = "collection"
	NamespaceSales      = "sales"
	NamespaceSettings   = "settings"
	NamespacePhotos     = "photos"
	NamespaceSession    = "session"
)

// PartitionKey returns the stable key of a user's partition in a namespace.
func PartitionKey(namespace string, userID uuid.UUID) string {
	return fmt.Sprintf("%s-%s", namespace, userID)
}

// PhotoKey returns the object key of an item photo inside the user's photo partition.
func PhotoKey(userID, itemID uuid.UUID) string {
	return PartitionKey(NamespacePhotos, userID) + "/" + itemID.String()
}
