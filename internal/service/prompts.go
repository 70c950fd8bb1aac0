package service

import "fmt"

// The analyst prompts are fixed templates; each sets one expert persona and
// wraps the raw tabular data. They are pure string formatting, stateless.

// EmployeeRiskPrompt frames the employee table for attrition and
// performance analysis.
func EmployeeRiskPrompt(employeeData string) string {
	return fmt.Sprintf(`You are an Expert Employee Risk Analyst.
Analyze the following employee data for attrition risk, performance issues, and attendance patterns.
Highlight any high-risk employees and suggest mitigation strategies.

Data:
%s

Analysis:`, employeeData)
}

// ProjectTrackingPrompt frames the schedule table for deadline and
// milestone analysis.
func ProjectTrackingPrompt(scheduleData string) string {
	return fmt.Sprintf(`You are a Senior Project Manager.
Analyze the following project data regarding deadlines, milestones, and schedule variance.
Identify any projects at risk of delay and recommend corrective actions.

Data:
%s

Analysis:`, scheduleData)
}

// FinancialAuditPrompt frames the spend table for budget analysis.
func FinancialAuditPrompt(financialData string) string {
	return fmt.Sprintf(`You are a Corporate Financial Auditor.
Analyze the following financial records for budget overruns, spending anomalies, and ROI concerns.
Compare actual spend vs budget if available.

Data:
%s

Analysis:`, financialData)
}

// MarketRiskPrompt asks for market risks affecting the given project context.
func MarketRiskPrompt(projectContext string) string {
	return fmt.Sprintf(`You are a Market Risk Strategist.
Based on the current general market trends (using your internal knowledge) and the specific project context provided below,
analyze potential market risks that could impact this project.

Context:
%s

Analysis:`, projectContext)
}

// ExecutiveSynthesisPrompt merges the four analyses into one executive
// report request.
func ExecutiveSynthesisPrompt(employee, project, financial, market string) string {
	return fmt.Sprintf(`You are the Chief Risk Officer (CRO) of a major corporation.
Synthesize the following specific risk analyses into a comprehensive Executive Risk Report.
Prioritize the most critical risks that need immediate attention.

Employee Risk Analysis:
%s

Project Schedule Analysis:
%s

Financial Analysis:
%s

Market Risk Analysis:
%s

Executive Summary & Action Plan:`, employee, project, financial, market)
}
