package handler

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
)

// CollectionServiceName is the gRPC service name of collection operations.
const CollectionServiceName = "cardkeeper.Collection"

// CollectionService defines operations on the caller's collection.
type CollectionService interface {
	List(ctx context.Context) ([]model.CollectionItem, error)
	Add(ctx context.Context, draft model.ItemDraft) (model.CollectionItem, error)
	Update(ctx context.Context, id uuid.UUID, patch model.ItemPatch) (model.CollectionItem, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Sell(ctx context.Context, id uuid.UUID, draft model.SaleDraft) (model.CollectionItem, error)
	Sales(ctx context.Context) ([]model.SaleRecord, error)
	ExportCSV(ctx context.Context) (string, error)
	ImportCSV(ctx context.Context, r io.Reader) (int, error)
	ExportJSON(ctx context.Context) (model.ExportEnvelope, error)
	ImportJSON(ctx context.Context, envelope model.ExportEnvelope) (int, error)
	GetSettings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error)
	UploadPhoto(ctx context.Context, id uuid.UUID, reader io.Reader, size int64, contentType string) (model.CollectionItem, error)
	Photo(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
	RefreshPrice(ctx context.Context, id uuid.UUID) (model.CollectionItem, error)
}

// Collection handles gRPC endpoints for collection items.
type Collection struct {
	collectionService CollectionService
	logger            *logger.Logger
}

// NewCollection creates a new Collection handler.
func NewCollection(collectionService CollectionService, logger *logger.Logger) *Collection {
	return &Collection{collectionService: collectionService, logger: logger}
}

// CollectionServiceDesc describes cardkeeper.Collection.
var CollectionServiceDesc = grpc.ServiceDesc{
	ServiceName: CollectionServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(CollectionServiceName, "List", (*Collection).List),
		unaryMethod(CollectionServiceName, "Add", (*Collection).Add),
		unaryMethod(CollectionServiceName, "Update", (*Collection).Update),
		unaryMethod(CollectionServiceName, "Delete", (*Collection).Delete),
		unaryMethod(CollectionServiceName, "Sell", (*Collection).Sell),
		unaryMethod(CollectionServiceName, "Sales", (*Collection).Sales),
		unaryMethod(CollectionServiceName, "ExportCSV", (*Collection).ExportCSV),
		unaryMethod(CollectionServiceName, "ImportCSV", (*Collection).ImportCSV),
		unaryMethod(CollectionServiceName, "ExportJSON", (*Collection).ExportJSON),
		unaryMethod(CollectionServiceName, "ImportJSON", (*Collection).ImportJSON),
		unaryMethod(CollectionServiceName, "GetSettings", (*Collection).GetSettings),
		unaryMethod(CollectionServiceName, "UpdateSettings", (*Collection).UpdateSettings),
		unaryMethod(CollectionServiceName, "UploadPhoto", (*Collection).UploadPhoto),
		unaryMethod(CollectionServiceName, "Photo", (*Collection).Photo),
		unaryMethod(CollectionServiceName, "RefreshPrice", (*Collection).RefreshPrice),
	},
	Metadata: "cardkeeper/collection",
}

func (h *Collection) List(ctx context.Context, _ *Empty) (*ItemsResponse, error) {
	items, err := h.collectionService.List(ctx)
	if err != nil {
		h.logger.Error("Collection handler: list failed", "error", err.Error())
		return nil, handleError(err)
	}
	return &ItemsResponse{Items: items}, nil
}

func (h *Collection) Add(ctx context.Context, req *AddItemRequest) (*ItemResponse, error) {
	h.logger.Debug("Collection handler: processing add request", "name", req.Name, "quantity", req.Quantity)

	item, err := h.collectionService.Add(ctx, req.draft())
	if err != nil {
		h.logger.Info("Collection handler: add failed", "name", req.Name, "error", err.Error())
		return nil, handleError(err)
	}
	return &ItemResponse{Item: item}, nil
}

func (h *Collection) Update(ctx context.Context, req *UpdateItemRequest) (*ItemResponse, error) {
	item, err := h.collectionService.Update(ctx, req.ID, req.patch())
	if err != nil {
		h.logger.Info("Collection handler: update failed", "item_id", req.ID, "error", err.Error())
		return nil, handleError(err)
	}
	return &ItemResponse{Item: item}, nil
}

func (h *Collection) Delete(ctx context.Context, req *ItemIDRequest) (*DeleteItemResponse, error) {
	deleted, err := h.collectionService.Delete(ctx, req.ID)
	if err != nil {
		return nil, handleError(err)
	}
	return &DeleteItemResponse{Deleted: deleted}, nil
}

func (h *Collection) Sell(ctx context.Context, req *SellItemRequest) (*ItemResponse, error) {
	item, err := h.collectionService.Sell(ctx, req.ID, model.SaleDraft{
		SaleDate:  req.SaleDate,
		SalePrice: req.SalePrice,
		Buyer:     req.Buyer,
		Platform:  req.Platform,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Info("Collection handler: sell failed", "item_id", req.ID, "error", err.Error())
		return nil, handleError(err)
	}
	return &ItemResponse{Item: item}, nil
}

func (h *Collection) Sales(ctx context.Context, _ *Empty) (*SalesResponse, error) {
	sales, err := h.collectionService.Sales(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return &SalesResponse{Sales: sales}, nil
}

func (h *Collection) ExportCSV(ctx context.Context, _ *Empty) (*CSVDocument, error) {
	doc, err := h.collectionService.ExportCSV(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return &CSVDocument{CSV: doc}, nil
}

func (h *Collection) ImportCSV(ctx context.Context, req *CSVDocument) (*ImportResponse, error) {
	imported, err := h.collectionService.ImportCSV(ctx, strings.NewReader(req.CSV))
	if err != nil {
		h.logger.Info("Collection handler: csv import stopped", "imported", imported, "error", err.Error())
		return nil, handleError(err)
	}
	return &ImportResponse{Imported: imported}, nil
}

func (h *Collection) ExportJSON(ctx context.Context, _ *Empty) (*model.ExportEnvelope, error) {
	envelope, err := h.collectionService.ExportJSON(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return &envelope, nil
}

func (h *Collection) ImportJSON(ctx context.Context, req *model.ExportEnvelope) (*ImportResponse, error) {
	imported, err := h.collectionService.ImportJSON(ctx, *req)
	if err != nil {
		h.logger.Info("Collection handler: json import stopped", "imported", imported, "error", err.Error())
		return nil, handleError(err)
	}
	return &ImportResponse{Imported: imported}, nil
}

func (h *Collection) GetSettings(ctx context.Context, _ *Empty) (*model.Settings, error) {
	settings, err := h.collectionService.GetSettings(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return &settings, nil
}

func (h *Collection) UpdateSettings(ctx context.Context, req *model.Settings) (*model.Settings, error) {
	settings, err := h.collectionService.UpdateSettings(ctx, *req)
	if err != nil {
		return nil, handleError(err)
	}
	return &settings, nil
}

func (h *Collection) UploadPhoto(ctx context.Context, req *UploadPhotoRequest) (*ItemResponse, error) {
	if len(req.Data) == 0 {
		return nil, status.Error(codes.InvalidArgument, "data: is required")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	item, err := h.collectionService.UploadPhoto(ctx, req.ID, bytes.NewReader(req.Data), int64(len(req.Data)), contentType)
	if err != nil {
		h.logger.Info("Collection handler: photo upload failed", "item_id", req.ID, "error", err.Error())
		return nil, handleError(err)
	}
	return &ItemResponse{Item: item}, nil
}

func (h *Collection) Photo(ctx context.Context, req *ItemIDRequest) (*PhotoResponse, error) {
	rc, err := h.collectionService.Photo(ctx, req.ID)
	if err != nil {
		return nil, handleError(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		h.logger.Error("Collection handler: failed to read photo", "item_id", req.ID, "error", err.Error())
		return nil, handleError(err)
	}
	return &PhotoResponse{Data: data}, nil
}

func (h *Collection) RefreshPrice(ctx context.Context, req *ItemIDRequest) (*ItemResponse, error) {
	item, err := h.collectionService.RefreshPrice(ctx, req.ID)
	if err != nil {
		return nil, handleError(err)
	}
	return &ItemResponse{Item: item}, nil
}
