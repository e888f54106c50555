package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

// User is the public view of an account.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	Plan           model.Plan `json:"plan"`
	Administrator  bool       `json:"administrator"`
	EmailConfirmed bool       `json:"emailConfirmed"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toUser(u model.User) User {
	return User{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		Plan:           u.Plan,
		Administrator:  u.Administrator,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries the token to send as a bearer credential.
// ConfirmationToken is set on registration only.
type SessionResponse struct {
	User              User   `json:"user"`
	Token             string `json:"token"`
	ConfirmationToken string `json:"confirmationToken,omitempty"`
}

type UserResponse struct {
	User User `json:"user"`
}

type CurrentUserResponse struct {
	User     *User `json:"user,omitempty"`
	SignedIn bool  `json:"signedIn"`
}

type IsAdministratorResponse struct {
	Administrator bool `json:"administrator"`
}

type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

type SetPlanRequest struct {
	UserID uuid.UUID  `json:"userId"`
	Plan   model.Plan `json:"plan"`
}

type ConfirmEmailRequest struct {
	Token string `json:"token"`
}

type ItemsResponse struct {
	Items []model.CollectionItem `json:"items"`
}

type ItemResponse struct {
	Item model.CollectionItem `json:"item"`
}

type AddItemRequest struct {
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Language        string     `json:"language"`
	Condition       string     `json:"condition,omitempty"`
	PurchasedPrice  float64    `json:"purchasedPrice"`
	EstimatedValue  float64    `json:"estimatedValue"`
	PurchaseDate    *time.Time `json:"purchaseDate,omitempty"`
	StorageLocation string     `json:"storageLocation,omitempty"`
	Photo           string     `json:"photo,omitempty"`
	Quantity        int        `json:"quantity,omitempty"`
}

func (r *AddItemRequest) draft() model.ItemDraft {
	return model.ItemDraft{
		Name:            r.Name,
		Category:        r.Category,
		Language:        r.Language,
		Condition:       r.Condition,
		PurchasedPrice:  r.PurchasedPrice,
		EstimatedValue:  r.EstimatedValue,
		PurchaseDate:    r.PurchaseDate,
		StorageLocation: r.StorageLocation,
		Photo:           r.Photo,
		Quantity:        r.Quantity,
	}
}

// UpdateItemRequest changes the fields that are present.
type UpdateItemRequest struct {
	ID              uuid.UUID  `json:"id"`
	Name            *string    `json:"name,omitempty"`
	Category        *string    `json:"category,omitempty"`
	Language        *string    `json:"language,omitempty"`
	Condition       *string    `json:"condition,omitempty"`
	PurchasedPrice  *float64   `json:"purchasedPrice,omitempty"`
	EstimatedValue  *float64   `json:"estimatedValue,omitempty"`
	PurchaseDate    *time.Time `json:"purchaseDate,omitempty"`
	StorageLocation *string    `json:"storageLocation,omitempty"`
	Photo           *string    `json:"photo,omitempty"`
	Quantity        *int       `json:"quantity,omitempty"`
}

func (r *UpdateItemRequest) patch() model.ItemPatch {
	return model.ItemPatch{
		Name:            r.Name,
		Category:        r.Category,
		Language:        r.Language,
		Condition:       r.Condition,
		PurchasedPrice:  r.PurchasedPrice,
		EstimatedValue:  r.EstimatedValue,
		PurchaseDate:    r.PurchaseDate,
		StorageLocation: r.StorageLocation,
		Photo:           r.Photo,
		Quantity:        r.Quantity,
	}
}

type ItemIDRequest struct {
	ID uuid.UUID `json:"id"`
}

type DeleteItemResponse struct {
	Deleted bool `json:"deleted"`
}

type SellItemRequest struct {
	ID        uuid.UUID `json:"id"`
	SaleDate  time.Time `json:"saleDate"`
	SalePrice float64   `json:"salePrice"`
	Buyer     string    `json:"buyer,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

type SalesResponse struct {
	Sales []model.SaleRecord `json:"sales"`
}

type CSVDocument struct {
	CSV string `json:"csv"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

type UploadPhotoRequest struct {
	ID          uuid.UUID `json:"id"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"data"`
}

type PhotoResponse struct {
	Data []byte `json:"data"`
}

// PushRequest carries the snapshot to mirror. With FromLocal set the
// server-side collection and settings are pushed instead.
type PushRequest struct {
	Items     []model.CollectionItem `json:"items"`
	Settings  *model.Settings        `json:"settings,omitempty"`
	FromLocal bool                   `json:"fromLocal,omitempty"`
}

type PushResponse struct {
	Pushed bool `json:"pushed"`
}

type CloudCollectionResponse struct {
	Collection *model.CloudCollection `json:"collection,omitempty"`
	Found      bool                   `json:"found"`
}

type ShareRequest struct {
	Public bool `json:"public"`
}

type ShareResponse struct {
	Code  string `json:"code,omitempty"`
	Found bool   `json:"found"`
}

type ResolveShareCodeRequest struct {
	Code string `json:"code"`
}

type NeedsSyncResponse struct {
	NeedsSync bool `json:"needsSync"`
}

type CreateIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CreateIntentResponse struct {
	Intent  *model.PaymentIntent `json:"intent,omitempty"`
	Created bool                 `json:"created"`
}

type PaymentConfirmationRequest struct {
	IntentID string              `json:"intentId"`
	UserID   uuid.UUID           `json:"userId"`
	Status   model.PaymentStatus `json:"status"`
}
