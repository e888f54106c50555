package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	// Registers the JSON codec the services are served with.
	_ "github.com/dtroode/cardkeeper-server/internal/api/grpc/codec"
	"github.com/dtroode/cardkeeper-server/internal/api/grpc/handler"
	"github.com/dtroode/cardkeeper-server/internal/api/grpc/middleware"
	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/service"
)

// publicMethods can be called without a session.
var publicMethods = map[string]struct{}{
	handler.FullMethod(handler.IdentityServiceName, "Register"):                 {},
	handler.FullMethod(handler.IdentityServiceName, "Login"):                    {},
	handler.FullMethod(handler.IdentityServiceName, "ConfirmEmail"):             {},
	handler.FullMethod(handler.SyncServiceName, "ResolveShareCode"):             {},
	handler.FullMethod(handler.BillingServiceName, "HandlePaymentConfirmation"): {},
}

// Router wires the cardkeeper services into a gRPC server.
type Router struct {
	identity       *service.Identity
	collection     *service.Collection
	sync           *service.Sync
	billing        *service.Billing
	tokens         model.TokenManager
	contextManager model.ContextManager
	webhookSecret  string
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	identity *service.Identity,
	collection *service.Collection,
	sync *service.Sync,
	billing *service.Billing,
	tokens model.TokenManager,
	contextManager model.ContextManager,
	webhookSecret string,
	logger *logger.Logger,
) *Router {
	return &Router{
		identity:       identity,
		collection:     collection,
		sync:           sync,
		billing:        billing,
		tokens:         tokens,
		contextManager: contextManager,
		webhookSecret:  webhookSecret,
		logger:         logger,
	}
}

func needsAuth(_ context.Context, c interceptors.CallMeta) bool {
	_, public := publicMethods[c.FullMethod()]
	return !public
}

// Register registers all gRPC services and middleware.
// Every method except the public ones requires an open session.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.identity, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(needsAuth),
			),
		),
	)

	s.RegisterService(&handler.IdentityServiceDesc, handler.NewIdentity(r.identity, r.logger))
	s.RegisterService(&handler.CollectionServiceDesc, handler.NewCollection(r.collection, r.logger))
	s.RegisterService(&handler.SyncServiceDesc, handler.NewSync(r.sync, r.collection, r.logger))
	s.RegisterService(&handler.BillingServiceDesc, handler.NewBilling(r.billing, r.webhookSecret, r.logger))

	return s
}
