package models

// Severity values accepted on bug creation.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ValidSeverity reports whether s is one of the accepted severities.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Bug link statuses. The lifecycle is a flat enum: any value may move to any
// other value, there is no enforced progression.
const (
	BugOpen       = "Open"
	BugInProgress = "In Progress"
	BugResolved   = "Resolved"
	BugRetesting  = "Retesting"
	BugClosed     = "Closed"
)

// ValidBugStatus reports whether s is one of the five link statuses.
func ValidBugStatus(s string) bool {
	switch s {
	case BugOpen, BugInProgress, BugResolved, BugRetesting, BugClosed:
		return true
	}
	return false
}

// Bug is one record of the deduplicated bug registry. Embedding is the
// vector for Title; it may be absent on records written before the model
// was reachable, and such records are invisible to similarity search.
type Bug struct {
	ID          int       `bson:"id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Severity    string    `bson:"severity" json:"severity"`
	Embedding   []float32 `bson:"embedding,omitempty" json:"-"`
}

// BugMatch pairs a bug with its similarity to the searched title.
type BugMatch struct {
	Bug
	Similarity float64 `json:"similarity"`
}

// BugHistoryEntry is one row of the bug history report: a bug joined to one
// execution row that links it.
type BugHistoryEntry struct {
	BugID        int    `json:"bug_id"`
	Title        string `json:"title"`
	Severity     string `json:"severity"`
	TestCaseID   string `json:"testcase_id"`
	TestPlanName string `json:"test_plan_name"`
	BugStatus    string `json:"bug_status"`
}

// BugDetail is the single joined row behind the bug detail view.
type BugDetail struct {
	BugID        int    `json:"bug_id"`
	Title        string `json:"title"`
	Severity     string `json:"severity"`
	Description  string `json:"description"`
	TestCaseID   string `json:"testcase_id"`
	TestPlanName string `json:"test_plan_name"`
	Status       string `json:"status"`
}
