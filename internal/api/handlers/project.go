package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/riskpilot-ai/riskpilot/internal/api"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
}

type ProjectHandler struct {
	repo ProjectRepository
}

func NewProjectHandler(repo ProjectRepository) *ProjectHandler {
	return &ProjectHandler{repo: repo}
}

type CreateProjectRequest struct {
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	ParentCompany   string     `json:"parent_company,omitempty"`
	BusinessPartner string     `json:"business_partner,omitempty"`
	Budget          float64    `json:"budget,omitempty"`
}

type ProjectResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	ParentCompany   string     `json:"parent_company,omitempty"`
	BusinessPartner string     `json:"business_partner,omitempty"`
	Budget          float64    `json:"budget"`
	CurrentProgress float64    `json:"current_progress"`
	ActualSpend     float64    `json:"actual_spend"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		StartDate:       p.StartDate,
		Deadline:        p.Deadline,
		ParentCompany:   p.ParentCompany,
		BusinessPartner: p.BusinessPartner,
		Budget:          p.Budget,
		CurrentProgress: p.CurrentProgress,
		ActualSpend:     p.ActualSpend,
		CreatedAt:       p.CreatedAt,
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	project := &domain.Project{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       req.StartDate,
		Deadline:        req.Deadline,
		ParentCompany:   req.ParentCompany,
		BusinessPartner: req.BusinessPartner,
		Budget:          req.Budget,
		CreatedAt:       time.Now().UTC(),
	}

	if err := domain.ValidateProject(project); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Create(r.Context(), project); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	project, err := h.repo.GetByID(r.Context(), projectID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, toProjectResponse(p))
	}

	api.Success(w, http.StatusOK, responses)
}
