package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
	"github.com/riskpilot-ai/riskpilot/internal/telemetry"
)

// InitialAnalysisMessage is the message field of the turn that stores the
// initial risk report.
const InitialAnalysisMessage = "System: Initial Risk Analysis"

// AnalysisInput carries the textual renderings of the three uploaded tables.
type AnalysisInput struct {
	EmployeeData  string
	ScheduleData  string
	FinancialData string
}

// AnalysisService runs the role-specific analysts over freshly ingested data
// and synthesizes their findings into one executive report.
type AnalysisService struct {
	completer Completer
	turns     ConversationStore
}

func NewAnalysisService(completer Completer, turns ConversationStore) *AnalysisService {
	return &AnalysisService{
		completer: completer,
		turns:     turns,
	}
}

// InitialReport runs the four analysts sequentially, then the executive
// synthesis, and persists the report as a system-origin turn. A failing
// analyst contributes its error text as that section; synthesis still runs.
func (s *AnalysisService) InitialReport(ctx context.Context, projectID string, in AnalysisInput) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnalysisService.InitialReport", telemetry.SpanAttributes{
		ProjectID: projectID,
		Operation: "initial_report",
	})
	defer span.End()

	employee := s.generate(ctx, EmployeeRiskPrompt(in.EmployeeData))
	project := s.generate(ctx, ProjectTrackingPrompt(in.ScheduleData))
	financial := s.generate(ctx, FinancialAuditPrompt(in.FinancialData))
	market := s.generate(ctx, MarketRiskPrompt(
		fmt.Sprintf("Project ID: %s\nDetails: %s", projectID, in.ScheduleData)))

	report := s.generate(ctx, ExecutiveSynthesisPrompt(employee, project, financial, market))

	turn := &domain.ConversationTurn{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Origin:    domain.TurnOriginSystem,
		Message:   InitialAnalysisMessage,
		Response:  report,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.turns.Append(ctx, turn); err != nil {
		log.Printf("analysis: failed to persist initial report (project %s): %v", projectID, err)
		telemetry.CaptureError(ctx, err)
	}

	return report, nil
}

// generate sends one template as a single user message. Failures become
// displayable text; analysis never aborts the request.
func (s *AnalysisService) generate(ctx context.Context, prompt string) string {
	text, err := s.completer.Complete(ctx, []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: prompt},
	})
	if err != nil {
		return completionErrorText(err)
	}
	return text
}
