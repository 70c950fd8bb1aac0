package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
)

func promptContaining(substr string) interface{} {
	return mock.MatchedBy(func(messages []domain.ChatMessage) bool {
		return len(messages) == 1 &&
			messages[0].Role == domain.ChatRoleUser &&
			strings.Contains(messages[0].Content, substr)
	})
}

func TestAnalysisService_InitialReport(t *testing.T) {
	completer := new(MockCompleter)
	turns := new(MockConversationStore)
	svc := NewAnalysisService(completer, turns)
	ctx := context.Background()

	completer.On("Complete", ctx, promptContaining("Employee Risk Analyst")).Return("emp analysis", nil)
	completer.On("Complete", ctx, promptContaining("Senior Project Manager")).Return("proj analysis", nil)
	completer.On("Complete", ctx, promptContaining("Corporate Financial Auditor")).Return("fin analysis", nil)
	completer.On("Complete", ctx, promptContaining("Market Risk Strategist")).Return("market analysis", nil)
	completer.On("Complete", ctx, promptContaining("Chief Risk Officer")).Return("executive report", nil)

	turns.On("Append", ctx, mock.MatchedBy(func(turn *domain.ConversationTurn) bool {
		return turn.ProjectID == "p1" &&
			turn.Origin == domain.TurnOriginSystem &&
			turn.Message == InitialAnalysisMessage &&
			turn.Response == "executive report"
	})).Return(nil)

	report, err := svc.InitialReport(ctx, "p1", AnalysisInput{
		EmployeeData:  "name,role\nAlice,Engineer",
		ScheduleData:  "task,status\nDesign,done",
		FinancialData: "date,amount\n2025-01-01,500",
	})

	require.NoError(t, err)
	assert.Equal(t, "executive report", report)
	completer.AssertExpectations(t)
	turns.AssertExpectations(t)
}

func TestAnalysisService_AnalystFailureFeedsSynthesis(t *testing.T) {
	completer := new(MockCompleter)
	turns := new(MockConversationStore)
	svc := NewAnalysisService(completer, turns)
	ctx := context.Background()

	completer.On("Complete", ctx, promptContaining("Employee Risk Analyst")).
		Return("", domain.ErrLLMNotConfigured)
	completer.On("Complete", ctx, promptContaining("Senior Project Manager")).Return("proj", nil)
	completer.On("Complete", ctx, promptContaining("Corporate Financial Auditor")).Return("fin", nil)
	completer.On("Complete", ctx, promptContaining("Market Risk Strategist")).Return("market", nil)

	var synthesisPrompt string
	completer.On("Complete", ctx, promptContaining("Chief Risk Officer")).
		Run(func(args mock.Arguments) {
			synthesisPrompt = args.Get(1).([]domain.ChatMessage)[0].Content
		}).
		Return("report", nil)
	turns.On("Append", ctx, mock.Anything).Return(nil)

	report, err := svc.InitialReport(ctx, "p1", AnalysisInput{})

	require.NoError(t, err)
	assert.Equal(t, "report", report)
	assert.Contains(t, synthesisPrompt, "Error: AI not configured",
		"a failing analyst contributes its error text as that section")
}

func TestPrompts_CarryData(t *testing.T) {
	assert.Contains(t, EmployeeRiskPrompt("EMPDATA"), "EMPDATA")
	assert.Contains(t, ProjectTrackingPrompt("SCHED"), "SCHED")
	assert.Contains(t, FinancialAuditPrompt("FIN"), "FIN")
	assert.Contains(t, MarketRiskPrompt("CTX"), "CTX")

	synthesis := ExecutiveSynthesisPrompt("E", "P", "F", "M")
	for _, section := range []string{"E", "P", "F", "M"} {
		assert.Contains(t, synthesis, section)
	}
}
