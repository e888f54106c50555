package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

type CloudCollectionStore struct {
	mock.Mock
}

func NewCloudCollectionStore(t TestingT) *CloudCollectionStore {
	m := &CloudCollectionStore{}
	register(&m.Mock, t)
	return m
}

func (m *CloudCollectionStore) GetByUser(ctx context.Context, userID uuid.UUID, name string) (model.CloudCollection, error) {
	args := m.Called(ctx, userID, name)
	return args.Get(0).(model.CloudCollection), args.Error(1)
}

func (m *CloudCollectionStore) GetByShareCode(ctx context.Context, code string) (model.CloudCollection, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.CloudCollection), args.Error(1)
}

func (m *CloudCollectionStore) Create(ctx context.Context, collection model.CloudCollection) (model.CloudCollection, error) {
	args := m.Called(ctx, collection)
	return args.Get(0).(model.CloudCollection), args.Error(1)
}

func (m *CloudCollectionStore) Update(ctx context.Context, collection model.CloudCollection) (model.CloudCollection, error) {
	args := m.Called(ctx, collection)
	return args.Get(0).(model.CloudCollection), args.Error(1)
}

func (m *CloudCollectionStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type PaymentGateway struct {
	mock.Mock
}

func NewPaymentGateway(t TestingT) *PaymentGateway {
	m := &PaymentGateway{}
	register(&m.Mock, t)
	return m
}

func (m *PaymentGateway) CreateIntent(ctx context.Context, amount int64, currency string) (model.PaymentIntent, error) {
	args := m.Called(ctx, amount, currency)
	return args.Get(0).(model.PaymentIntent), args.Error(1)
}
