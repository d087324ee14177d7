package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"market-chat-service/internal/auth"
	"market-chat-service/internal/models"
	"market-chat-service/internal/presence"
	"market-chat-service/internal/repositories"
)

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetOrCreate(ctx context.Context, accountA, accountB string) (models.Conversation, error) {
	args := m.Called(ctx, accountA, accountB)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) GetByName(ctx context.Context, name string) (models.Conversation, error) {
	args := m.Called(ctx, name)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListForAccount(ctx context.Context, accountID string) ([]models.Conversation, error) {
	args := m.Called(ctx, accountID)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, conversationName, fromID, toID, content string, statementID *string) (models.Message, error) {
	args := m.Called(ctx, conversationName, fromID, toID, content, statementID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Recent(ctx context.Context, conversationName string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, conversationName, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) History(ctx context.Context, conversationName string, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, conversationName, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) Count(ctx context.Context, conversationName string) (int, error) {
	args := m.Called(ctx, conversationName)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) CountUnread(ctx context.Context, accountID string) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, conversationName, readerID string) error {
	args := m.Called(ctx, conversationName, readerID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) LastMessage(ctx context.Context, conversationName string) (models.Message, error) {
	args := m.Called(ctx, conversationName)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type AccountRepositoryMock struct {
	mock.Mock
}

func (m *AccountRepositoryMock) Get(ctx context.Context, accountID string) (models.Account, error) {
	args := m.Called(ctx, accountID)
	var account models.Account
	if val := args.Get(0); val != nil {
		account = val.(models.Account)
	}
	return account, args.Error(1)
}

func (m *AccountRepositoryMock) Exists(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

type StatementRepositoryMock struct {
	mock.Mock
}

func (m *StatementRepositoryMock) Get(ctx context.Context, statementID string) (models.Statement, error) {
	args := m.Called(ctx, statementID)
	var st models.Statement
	if val := args.Get(0); val != nil {
		st = val.(models.Statement)
	}
	return st, args.Error(1)
}

type ResponseRepositoryMock struct {
	mock.Mock
}

func (m *ResponseRepositoryMock) Get(ctx context.Context, responseID string) (models.Response, error) {
	args := m.Called(ctx, responseID)
	var resp models.Response
	if val := args.Get(0); val != nil {
		resp = val.(models.Response)
	}
	return resp, args.Error(1)
}

func (m *ResponseRepositoryMock) ListForStatement(ctx context.Context, statementID string) ([]models.Response, error) {
	args := m.Called(ctx, statementID)
	var resps []models.Response
	if val := args.Get(0); val != nil {
		resps = val.([]models.Response)
	}
	return resps, args.Error(1)
}

type TrackerMock struct {
	mock.Mock
}

func (m *TrackerMock) Join(ctx context.Context, conversationName, accountID string) error {
	args := m.Called(ctx, conversationName, accountID)
	return args.Error(0)
}

func (m *TrackerMock) Leave(ctx context.Context, conversationName, accountID string) error {
	args := m.Called(ctx, conversationName, accountID)
	return args.Error(0)
}

func (m *TrackerMock) Online(ctx context.Context, conversationName string) ([]string, error) {
	args := m.Called(ctx, conversationName)
	var online []string
	if val := args.Get(0); val != nil {
		online = val.([]string)
	}
	return online, args.Error(1)
}

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) Resolve(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.AccountRepository = (*AccountRepositoryMock)(nil)
var _ repositories.StatementRepository = (*StatementRepositoryMock)(nil)
var _ repositories.ResponseRepository = (*ResponseRepositoryMock)(nil)
var _ presence.Tracker = (*TrackerMock)(nil)
var _ auth.Verifier = (*VerifierMock)(nil)
