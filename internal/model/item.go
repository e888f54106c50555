package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ItemStore defines persistence operations for collection items.
// Every lookup is scoped to the owning user's partition.
type ItemStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CollectionItem, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (CollectionItem, error)
	// GetActiveByMergeKey returns the unsold item with the given merge key.
	GetActiveByMergeKey(ctx context.Context, userID uuid.UUID, mergeKey string) (CollectionItem, error)
	Create(ctx context.Context, item CollectionItem) (CollectionItem, error)
	Update(ctx context.Context, item CollectionItem) (CollectionItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// MaxQuantity is the largest number of units a single item may hold.
const MaxQuantity = 9999

// CollectionItem is a single tracked collectible.
type CollectionItem struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"-"`
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Language        string         `json:"language"`
	Condition       string         `json:"condition,omitempty"`
	PurchasedPrice  float64        `json:"purchasedPrice"`
	EstimatedValue  float64        `json:"estimatedValue"`
	PurchaseDate    *time.Time     `json:"purchaseDate,omitempty"`
	StorageLocation string         `json:"storageLocation,omitempty"`
	Photo           string         `json:"photo,omitempty"`
	Price           *PriceSnapshot `json:"price,omitempty"`
	IsSold          bool           `json:"isSold"`
	Sale            *SaleRecord    `json:"sale,omitempty"`
	Quantity        int            `json:"quantity"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// MergeKey returns the normalized (name, category, language) key of the item.
func (i CollectionItem) MergeKey() string {
	return MergeKey(i.Name, i.Category, i.Language)
}

// PriceSnapshot is the last quote fetched from the price collaborator.
type PriceSnapshot struct {
	Low       float64   `json:"low"`
	Trend     float64   `json:"trend"`
	Average   float64   `json:"average"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemDraft holds the attributes of an item to add.
type ItemDraft struct {
	Name            string
	Category        string
	Language        string
	Condition       string
	PurchasedPrice  float64
	EstimatedValue  float64
	PurchaseDate    *time.Time
	StorageLocation string
	Photo           string
	// Quantity defaults to 1 when zero.
	Quantity int
}

// ItemPatch is a partial item update. Nil fields are left untouched.
type ItemPatch struct {
	Name            *string
	Category        *string
	Language        *string
	Condition       *string
	PurchasedPrice  *float64
	EstimatedValue  *float64
	PurchaseDate    *time.Time
	StorageLocation *string
	Photo           *string
	Quantity        *int
}

// MergeKey builds the case-insensitive key under which unsold items merge.
func MergeKey(name, category, language string) string {
	return normalizeKeyPart(name) + "\x1f" + normalizeKeyPart(category) + "\x1f" + normalizeKeyPart(language)
}

func normalizeKeyPart(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// FoldKey returns the Unicode case-folded form under which emails and
// usernames are unique, so "Élise" and "élise" collide.
func FoldKey(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}
