package domain

// Typed records produced at the ingestion boundary. CSV rows are mapped into
// these once; downstream components never see raw string maps. Missing or
// malformed fields default to zero values rather than rejecting the upload.

// Person is one row of the employee table.
type Person struct {
	Name        string
	Role        string
	Department  string
	Attendance  float64
	Performance float64
}

// ScheduleItem is one row of the project schedule table.
type ScheduleItem struct {
	Task     string
	Owner    string
	DueDate  string
	Status   string
	Progress float64
}

// SpendItem is one row of the financial table. Amount is nil when the source
// value was absent or unparseable, so aggregation can skip it without
// conflating "missing" with zero spend.
type SpendItem struct {
	Date        string
	Category    string
	Description string
	Amount      *float64
}
