package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

type ItemStore struct {
	mock.Mock
}

func NewItemStore(t TestingT) *ItemStore {
	m := &ItemStore{}
	register(&m.Mock, t)
	return m
}

func (m *ItemStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CollectionItem, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]model.CollectionItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *ItemStore) GetByID(ctx context.Context, userID, id uuid.UUID) (model.CollectionItem, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(model.CollectionItem), args.Error(1)
}

func (m *ItemStore) GetActiveByMergeKey(ctx context.Context, userID uuid.UUID, mergeKey string) (model.CollectionItem, error) {
	args := m.Called(ctx, userID, mergeKey)
	return args.Get(0).(model.CollectionItem), args.Error(1)
}

func (m *ItemStore) Create(ctx context.Context, item model.CollectionItem) (model.CollectionItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(model.CollectionItem), args.Error(1)
}

func (m *ItemStore) Update(ctx context.Context, item model.CollectionItem) (model.CollectionItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(model.CollectionItem), args.Error(1)
}

func (m *ItemStore) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *ItemStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type SaleStore struct {
	mock.Mock
}

func NewSaleStore(t TestingT) *SaleStore {
	m := &SaleStore{}
	register(&m.Mock, t)
	return m
}

func (m *SaleStore) Create(ctx context.Context, sale model.SaleRecord) (model.SaleRecord, error) {
	args := m.Called(ctx, sale)
	return args.Get(0).(model.SaleRecord), args.Error(1)
}

func (m *SaleStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.SaleRecord, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]model.SaleRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SaleStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type SettingsStore struct {
	mock.Mock
}

func NewSettingsStore(t TestingT) *SettingsStore {
	m := &SettingsStore{}
	register(&m.Mock, t)
	return m
}

func (m *SettingsStore) Get(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Settings), args.Error(1)
}

func (m *SettingsStore) Save(ctx context.Context, userID uuid.UUID, settings model.Settings) error {
	args := m.Called(ctx, userID, settings)
	return args.Error(0)
}

func (m *SettingsStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type PhotoStorage struct {
	mock.Mock
}

func NewPhotoStorage(t TestingT) *PhotoStorage {
	m := &PhotoStorage{}
	register(&m.Mock, t)
	return m
}

func (m *PhotoStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *PhotoStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PhotoStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *PhotoStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *PhotoStorage) DeletePrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

type PriceLookup struct {
	mock.Mock
}

func NewPriceLookup(t TestingT) *PriceLookup {
	m := &PriceLookup{}
	register(&m.Mock, t)
	return m
}

func (m *PriceLookup) FetchPrice(ctx context.Context, name, category, language string) (model.PriceQuote, error) {
	args := m.Called(ctx, name, category, language)
	return args.Get(0).(model.PriceQuote), args.Error(1)
}

type ImageLookup struct {
	mock.Mock
}

func NewImageLookup(t TestingT) *ImageLookup {
	m := &ImageLookup{}
	register(&m.Mock, t)
	return m
}

func (m *ImageLookup) FetchImage(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}
