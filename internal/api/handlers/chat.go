package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/riskpilot-ai/riskpilot/internal/api"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
	"github.com/riskpilot-ai/riskpilot/internal/ingest"
	"github.com/riskpilot-ai/riskpilot/internal/service"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory int64 = 4 * 1024 * 1024

type IngestionPipeline interface {
	Run(ctx context.Context, projectID string, upload ingest.Upload) (*ingest.Report, error)
}

type Analyzer interface {
	InitialReport(ctx context.Context, projectID string, in service.AnalysisInput) (string, error)
}

type ChatOrchestrator interface {
	Chat(ctx context.Context, projectID, message string) (*service.ChatResult, error)
	History(ctx context.Context, projectID string) ([]*domain.ConversationTurn, error)
}

type ProjectGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
}

type ChatHandler struct {
	projects ProjectGetter
	pipeline IngestionPipeline
	analyzer Analyzer
	chat     ChatOrchestrator
}

func NewChatHandler(projects ProjectGetter, pipeline IngestionPipeline, analyzer Analyzer, chat ChatOrchestrator) *ChatHandler {
	return &ChatHandler{
		projects: projects,
		pipeline: pipeline,
		analyzer: analyzer,
		chat:     chat,
	}
}

type InitChatResponse struct {
	Analysis    string         `json:"analysis"`
	ChunkCounts map[string]int `json:"chunk_counts"`
	TotalSpend  float64        `json:"total_spend"`
	Failures    []string       `json:"failures,omitempty"`
}

type ContinueChatRequest struct {
	Message string `json:"message"`
}

type ContinueChatResponse struct {
	Response  string    `json:"response"`
	Cached    bool      `json:"cached"`
	Timestamp time.Time `json:"timestamp"`
}

type TurnResponse struct {
	ID        string    `json:"id"`
	Origin    string    `json:"origin"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Init ingests the uploaded tables for a project and returns the initial
// risk analysis. Missing files are tolerated; their tables are skipped.
func (h *ChatHandler) Init(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		api.HandleError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var upload ingest.Upload
	var parseErr error
	upload.Employees, parseErr = parseUploadedTable(r, "employee_file", domain.ChunkKindEmployees)
	if parseErr != nil {
		api.Error(w, http.StatusBadRequest, "employee_file is not valid CSV")
		return
	}
	upload.Schedule, parseErr = parseUploadedTable(r, "project_file", domain.ChunkKindSchedule)
	if parseErr != nil {
		api.Error(w, http.StatusBadRequest, "project_file is not valid CSV")
		return
	}
	upload.Financials, parseErr = parseUploadedTable(r, "financial_file", domain.ChunkKindFinancials)
	if parseErr != nil {
		api.Error(w, http.StatusBadRequest, "financial_file is not valid CSV")
		return
	}

	report, err := h.pipeline.Run(r.Context(), projectID, upload)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	analysis, err := h.analyzer.InitialReport(r.Context(), projectID, service.AnalysisInput{
		EmployeeData:  tableText(upload.Employees),
		ScheduleData:  tableText(upload.Schedule),
		FinancialData: tableText(upload.Financials),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := InitChatResponse{
		Analysis:    analysis,
		ChunkCounts: make(map[string]int, len(report.ChunkCounts)),
		TotalSpend:  report.TotalSpend,
	}
	for kind, count := range report.ChunkCounts {
		resp.ChunkCounts[string(kind)] = count
	}
	for _, failure := range report.Failures {
		resp.Failures = append(resp.Failures, string(failure.Kind))
	}

	api.Success(w, http.StatusOK, resp)
}

// Continue answers one chat message within the project scope.
func (h *ChatHandler) Continue(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		api.HandleError(w, err)
		return
	}

	var req ContinueChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.chat.Chat(r.Context(), projectID, req.Message)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ContinueChatResponse{
		Response:  result.Response,
		Cached:    result.Cached,
		Timestamp: time.Now().UTC(),
	})
}

// History returns a project's conversation turns in chronological order.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		api.HandleError(w, err)
		return
	}

	turns, err := h.chat.History(r.Context(), projectID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]TurnResponse, 0, len(turns))
	for _, turn := range turns {
		responses = append(responses, TurnResponse{
			ID:        turn.ID,
			Origin:    string(turn.Origin),
			Message:   turn.Message,
			Response:  turn.Response,
			CreatedAt: turn.CreatedAt,
		})
	}

	api.Success(w, http.StatusOK, responses)
}

// parseUploadedTable reads one optional multipart file into a typed table.
// An absent file yields a nil table, not an error.
func parseUploadedTable(r *http.Request, field string, kind domain.ChunkKind) (*ingest.Table, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return ingest.ParseCSV(kind, file)
}

func tableText(t *ingest.Table) string {
	if t == nil {
		return ""
	}
	return t.Text()
}
