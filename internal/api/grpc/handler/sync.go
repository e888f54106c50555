package handler

import (
	"context"

	"google.golang.org/grpc"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
)

// SyncServiceName is the gRPC service name of cloud mirror operations.
const SyncServiceName = "cardkeeper.Sync"

// SyncService defines cloud mirror operations.
type SyncService interface {
	Push(ctx context.Context, items []model.CollectionItem, settings model.Settings) (bool, error)
	Pull(ctx context.Context) (model.CloudCollection, bool, error)
	Share(ctx context.Context, makePublic bool) (string, bool, error)
	ResolveShareCode(ctx context.Context, code string) (model.CloudCollection, bool, error)
	NeedsSync(ctx context.Context) (bool, error)
}

// LocalSnapshot reads the caller's server-side collection for a push.
type LocalSnapshot interface {
	List(ctx context.Context) ([]model.CollectionItem, error)
	GetSettings(ctx context.Context) (model.Settings, error)
}

// Sync handles gRPC endpoints for the cloud mirror.
type Sync struct {
	syncService SyncService
	local       LocalSnapshot
	logger      *logger.Logger
}

// NewSync creates a new Sync handler.
func NewSync(syncService SyncService, local LocalSnapshot, logger *logger.Logger) *Sync {
	return &Sync{syncService: syncService, local: local, logger: logger}
}

// SyncServiceDesc describes cardkeeper.Sync.
var SyncServiceDesc = grpc.ServiceDesc{
	ServiceName: SyncServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(SyncServiceName, "Push", (*Sync).Push),
		unaryMethod(SyncServiceName, "Pull", (*Sync).Pull),
		unaryMethod(SyncServiceName, "Share", (*Sync).Share),
		unaryMethod(SyncServiceName, "ResolveShareCode", (*Sync).ResolveShareCode),
		unaryMethod(SyncServiceName, "NeedsSync", (*Sync).NeedsSync),
	},
	Metadata: "cardkeeper/sync",
}

func (h *Sync) Push(ctx context.Context, req *PushRequest) (*PushResponse, error) {
	items := req.Items
	settings := model.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	if req.FromLocal {
		var err error
		if items, err = h.local.List(ctx); err != nil {
			return nil, handleError(err)
		}
		if settings, err = h.local.GetSettings(ctx); err != nil {
			return nil, handleError(err)
		}
	}

	pushed, err := h.syncService.Push(ctx, items, settings)
	if err != nil {
		h.logger.Error("Sync handler: push failed", "error", err.Error())
		return nil, handleError(err)
	}
	return &PushResponse{Pushed: pushed}, nil
}

func (h *Sync) Pull(ctx context.Context, _ *Empty) (*CloudCollectionResponse, error) {
	collection, ok, err := h.syncService.Pull(ctx)
	if err != nil {
		h.logger.Error("Sync handler: pull failed", "error", err.Error())
		return nil, handleError(err)
	}
	return collectionResponse(collection, ok), nil
}

func (h *Sync) Share(ctx context.Context, req *ShareRequest) (*ShareResponse, error) {
	code, ok, err := h.syncService.Share(ctx, req.Public)
	if err != nil {
		return nil, handleError(err)
	}
	return &ShareResponse{Code: code, Found: ok}, nil
}

// ResolveShareCode is public. Unknown and private codes look the same.
func (h *Sync) ResolveShareCode(ctx context.Context, req *ResolveShareCodeRequest) (*CloudCollectionResponse, error) {
	collection, ok, err := h.syncService.ResolveShareCode(ctx, req.Code)
	if err != nil {
		h.logger.Error("Sync handler: resolve share code failed", "error", err.Error())
		return nil, handleError(err)
	}
	return collectionResponse(collection, ok), nil
}

func (h *Sync) NeedsSync(ctx context.Context, _ *Empty) (*NeedsSyncResponse, error) {
	needs, err := h.syncService.NeedsSync(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return &NeedsSyncResponse{NeedsSync: needs}, nil
}

func collectionResponse(collection model.CloudCollection, ok bool) *CloudCollectionResponse {
	if !ok {
		return &CloudCollectionResponse{}
	}
	return &CloudCollectionResponse{Collection: &collection, Found: true}
}
