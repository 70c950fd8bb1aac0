package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskpilot-ai/riskpilot/internal/api"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
	"github.com/riskpilot-ai/riskpilot/internal/ingest"
	"github.com/riskpilot-ai/riskpilot/internal/service"
)

type MockIngestionPipeline struct {
	mock.Mock
}

func (m *MockIngestionPipeline) Run(ctx context.Context, projectID string, upload ingest.Upload) (*ingest.Report, error) {
	args := m.Called(ctx, projectID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Report), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) InitialReport(ctx context.Context, projectID string, in service.AnalysisInput) (string, error) {
	args := m.Called(ctx, projectID, in)
	return args.String(0), args.Error(1)
}

type MockChatOrchestrator struct {
	mock.Mock
}

func (m *MockChatOrchestrator) Chat(ctx context.Context, projectID, message string) (*service.ChatResult, error) {
	args := m.Called(ctx, projectID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatResult), args.Error(1)
}

func (m *MockChatOrchestrator) History(ctx context.Context, projectID string) ([]*domain.ConversationTurn, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConversationTurn), args.Error(1)
}

type chatHandlerFixture struct {
	projects *MockProjectRepository
	pipeline *MockIngestionPipeline
	analyzer *MockAnalyzer
	chat     *MockChatOrchestrator
	handler  *ChatHandler
}

func newChatHandlerFixture() *chatHandlerFixture {
	f := &chatHandlerFixture{
		projects: new(MockProjectRepository),
		pipeline: new(MockIngestionPipeline),
		analyzer: new(MockAnalyzer),
		chat:     new(MockChatOrchestrator),
	}
	f.handler = NewChatHandler(f.projects, f.pipeline, f.analyzer, f.chat)
	return f
}

func knownProject(id string) *domain.Project {
	return &domain.Project{ID: id, Name: "Known", CreatedAt: time.Now().UTC()}
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestChatHandler_Init(t *testing.T) {
	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-1").Return(knownProject("p-1"), nil)
	f.pipeline.On("Run", mock.Anything, "p-1", mock.MatchedBy(func(u ingest.Upload) bool {
		return u.Employees != nil && u.Schedule != nil && u.Financials != nil
	})).Return(&ingest.Report{
		ChunkCounts: map[domain.ChunkKind]int{
			domain.ChunkKindEmployees:  1,
			domain.ChunkKindSchedule:   1,
			domain.ChunkKindFinancials: 1,
		},
		TotalSpend: 500,
	}, nil)
	f.analyzer.On("InitialReport", mock.Anything, "p-1", mock.MatchedBy(func(in service.AnalysisInput) bool {
		return in.EmployeeData != "" && in.ScheduleData != "" && in.FinancialData != ""
	})).Return("initial risk report", nil)

	body, contentType := multipartUpload(t, map[string]string{
		"employee_file":  "name,role\nAlice,Engineer\n",
		"project_file":   "task,due_date\nKickoff,2026-01-15\n",
		"financial_file": "category,amount\nHosting,500\n",
	})

	req := httptest.NewRequest(http.MethodPost, "/chat/init/p-1", body)
	req.Header.Set("Content-Type", contentType)
	req = withURLParam(req, "id", "p-1")
	w := httptest.NewRecorder()

	f.handler.Init(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.pipeline.AssertExpectations(t)
	f.analyzer.AssertExpectations(t)

	var resp api.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "initial risk report", data["analysis"])
	assert.Equal(t, float64(500), data["total_spend"])
}

func TestChatHandler_Init_MissingFilesTolerated(t *testing.T) {
	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-1").Return(knownProject("p-1"), nil)
	f.pipeline.On("Run", mock.Anything, "p-1", mock.MatchedBy(func(u ingest.Upload) bool {
		return u.Employees != nil && u.Schedule == nil && u.Financials == nil
	})).Return(&ingest.Report{ChunkCounts: map[domain.ChunkKind]int{domain.ChunkKindEmployees: 1}}, nil)
	f.analyzer.On("InitialReport", mock.Anything, "p-1", mock.Anything).Return("report", nil)

	body, contentType := multipartUpload(t, map[string]string{
		"employee_file": "name,role\nAlice,Engineer\n",
	})

	req := httptest.NewRequest(http.MethodPost, "/chat/init/p-1", body)
	req.Header.Set("Content-Type", contentType)
	req = withURLParam(req, "id", "p-1")
	w := httptest.NewRecorder()

	f.handler.Init(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.pipeline.AssertExpectations(t)
}

func TestChatHandler_Init_UnknownProject(t *testing.T) {
	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-404").Return(nil, domain.ErrProjectNotFound)

	body, contentType := multipartUpload(t, map[string]string{
		"employee_file": "name,role\nAlice,Engineer\n",
	})

	req := httptest.NewRequest(http.MethodPost, "/chat/init/p-404", body)
	req.Header.Set("Content-Type", contentType)
	req = withURLParam(req, "id", "p-404")
	w := httptest.NewRecorder()

	f.handler.Init(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.pipeline.AssertNotCalled(t, "Run")
}

func TestChatHandler_Continue(t *testing.T) {
	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-1").Return(knownProject("p-1"), nil)
	f.chat.On("Chat", mock.Anything, "p-1", "What are the risks?").
		Return(&service.ChatResult{Response: "Two risks identified.", Cached: false}, nil)

	body := `{"message": "What are the risks?"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/continue/p-1", bytes.NewReader([]byte(body)))
	req = withURLParam(req, "id", "p-1")
	w := httptest.NewRecorder()

	f.handler.Continue(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Two risks identified.", data["response"])
	assert.Equal(t, false, data["cached"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestChatHandler_Continue_EmptyMessage(t *testing.T) {
	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-1").Return(knownProject("p-1"), nil)
	f.chat.On("Chat", mock.Anything, "p-1", "").Return(nil, domain.ErrEmptyMessage)

	req := httptest.NewRequest(http.MethodPost, "/chat/continue/p-1", bytes.NewReader([]byte(`{"message": ""}`)))
	req = withURLParam(req, "id", "p-1")
	w := httptest.NewRecorder()

	f.handler.Continue(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_Continue_CachedFlag(t *testing.T) {
	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-1").Return(knownProject("p-1"), nil)
	f.chat.On("Chat", mock.Anything, "p-1", "repeat").
		Return(&service.ChatResult{Response: "cached answer", Cached: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/continue/p-1", bytes.NewReader([]byte(`{"message": "repeat"}`)))
	req = withURLParam(req, "id", "p-1")
	w := httptest.NewRecorder()

	f.handler.Continue(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cached":true`)
}

func TestChatHandler_History(t *testing.T) {
	turns := []*domain.ConversationTurn{
		{
			ID:        "t-1",
			ProjectID: "p-1",
			Origin:    domain.TurnOriginSystem,
			Message:   "System: Initial Risk Analysis",
			Response:  "report",
			CreatedAt: time.Now().UTC(),
		},
		{
			ID:        "t-2",
			ProjectID: "p-1",
			Origin:    domain.TurnOriginUser,
			Message:   "question",
			Response:  "answer",
			CreatedAt: time.Now().UTC(),
		},
	}

	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-1").Return(knownProject("p-1"), nil)
	f.chat.On("History", mock.Anything, "p-1").Return(turns, nil)

	req := httptest.NewRequest(http.MethodGet, "/chats/p-1", nil)
	req = withURLParam(req, "id", "p-1")
	w := httptest.NewRecorder()

	f.handler.History(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "system", first["origin"])
}

func TestChatHandler_History_StoreFailureKeepsStatus(t *testing.T) {
	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-1").Return(knownProject("p-1"), nil)
	f.chat.On("History", mock.Anything, "p-1").Return(nil,
		domain.NewDomainErrorWithCause(domain.ErrCodeStoreUnavailable, "listing turns", assert.AnError))

	req := httptest.NewRequest(http.MethodGet, "/chats/p-1", nil)
	req = withURLParam(req, "id", "p-1")
	w := httptest.NewRecorder()

	f.handler.History(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChatHandler_History_UnknownProject(t *testing.T) {
	f := newChatHandlerFixture()
	f.projects.On("GetByID", mock.Anything, "p-404").Return(nil, domain.ErrProjectNotFound)

	req := httptest.NewRequest(http.MethodGet, "/chats/p-404", nil)
	req = withURLParam(req, "id", "p-404")
	w := httptest.NewRecorder()

	f.handler.History(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.chat.AssertNotCalled(t, "History")
}
