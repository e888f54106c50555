package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

type UserStore struct {
	mock.Mock
}

func NewUserStore(t TestingT) *UserStore {
	m := &UserStore{}
	register(&m.Mock, t)
	return m
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByConfirmationToken(ctx context.Context, token string) (model.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type CredentialStore struct {
	mock.Mock
}

func NewCredentialStore(t TestingT) *CredentialStore {
	m := &CredentialStore{}
	register(&m.Mock, t)
	return m
}

func (m *CredentialStore) Upsert(ctx context.Context, credential model.Credential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *CredentialStore) GetByUserID(ctx context.Context, userID uuid.UUID) (model.Credential, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Credential), args.Error(1)
}

func (m *CredentialStore) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type SessionStore struct {
	mock.Mock
}

func NewSessionStore(t TestingT) *SessionStore {
	m := &SessionStore{}
	register(&m.Mock, t)
	return m
}

func (m *SessionStore) Save(ctx context.Context, session model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionStore) Get(ctx context.Context, id uuid.UUID) (model.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Session), args.Error(1)
}

func (m *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type TokenManager struct {
	mock.Mock
}

func NewTokenManager(t TestingT) *TokenManager {
	m := &TokenManager{}
	register(&m.Mock, t)
	return m
}

func (m *TokenManager) GenerateSessionToken(sessionID, userID uuid.UUID) (string, error) {
	args := m.Called(sessionID, userID)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) ParseSessionToken(token string) (uuid.UUID, uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Get(1).(uuid.UUID), args.Error(2)
}

type PasswordHasher struct {
	mock.Mock
}

func NewPasswordHasher(t TestingT) *PasswordHasher {
	m := &PasswordHasher{}
	register(&m.Mock, t)
	return m
}

func (m *PasswordHasher) NewSalt() ([]byte, error) {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PasswordHasher) Hash(password string, salt []byte) []byte {
	args := m.Called(password, salt)
	if v := args.Get(0); v != nil {
		return v.([]byte)
	}
	return nil
}

func (m *PasswordHasher) Verify(password string, credential model.Credential) bool {
	args := m.Called(password, credential)
	return args.Bool(0)
}

type Transactor struct {
	mock.Mock
}

func NewTransactor(t TestingT) *Transactor {
	m := &Transactor{}
	register(&m.Mock, t)
	return m
}

// WithinTx records the call and, unless an error is configured, runs fn.
func (m *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type PartitionDropper struct {
	mock.Mock
}

func NewPartitionDropper(t TestingT) *PartitionDropper {
	m := &PartitionDropper{}
	register(&m.Mock, t)
	return m
}

func (m *PartitionDropper) DropPartition(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
