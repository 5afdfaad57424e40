package ingest

import "strings"

// Canonical column names of the test case catalog.
const (
	colSNo                 = "s_no"
	colTestCaseID          = "testcase_id"
	colTestSuite           = "test_suite"
	colTestCaseDescription = "testcase_description"
	colTestScenarioID      = "test_scenario_id"
	colTestScenario        = "test_scenario"
	colPrerequisite        = "prerequisite"
	colStepsToReproduce    = "steps_to_reproduce"
	colExpectedResult      = "expected_result"
	colActualResult        = "actual_result"
	colTestResult          = "test_result"
	colStatus              = "status"
	colComments            = "comments"
)

// headerAlternatives maps each canonical column to the spellings seen in
// spreadsheets exported by different teams. Matching is case-insensitive.
var headerAlternatives = map[string][]string{
	colSNo: {
		"S.No", "S No", "Serial Number", "s_no", "Serial no.", "Serial No", "S. No.",
		"Sl. No", "Sl No", "Sl.No.", "SlNo", "Index", "Row Number", "Sr No", "Sr.No",
		"srno", "Sr_Number",
	},
	colTestCaseID: {
		"Test Case ID", "test case id", "TestCaseID", "tc_id", "Testcase Id",
		"TestCase Id", "test_case_id", "Test-Case ID", "TC ID", "TCID", "Test ID",
		"Test_ID", "Test case ID",
	},
	colTestSuite: {
		"Test Suite", "test_suite", "suite", "TestSuite", "Suite Name",
		"Test Suite Name", "Test Category", "Module", "Module Name", "Feature",
		"Feature Name",
	},
	colTestCaseDescription: {
		"Test Case Description", "Description", "testcase_description",
		"Test Description", "Test Case Desc", "TestCaseDesc", "Testcase description",
		"Case Description", "TestCase Description",
	},
	colTestScenarioID: {
		"Test Scenario ID", "scenario_id", "Scenario Id", "Scenario ID",
		"TestScenarioID", "TS_ID", "Test Sc ID", "Scenario Identifier",
	},
	colTestScenario: {
		"Test Case summary", "Summary", "test_scenario", "Test Scenario Description",
		"Test Scenario", "Scenario", "Scenario Description", "Scenario Summary",
		"Scenario Desc", "TestScenarioSummary",
	},
	colPrerequisite: {
		"Prerequisite", "Prereq", "Pre-requisite", "prerequisite", "Pre Requisite",
		"Pre-Requisite", "Pre Conditions", "precondition", "Pre Condition", "Pre Cond",
		"PreCond", "Required Setup", "Requirement", "Req", "Pre-Condition",
	},
	colStepsToReproduce: {
		"Steps to Reproduce", "Steps", "steps_to_reproduce", "Test Steps",
		"Reproduction Steps", "Steps To Reproduce", "StepsToReproduce", "Procedure",
		"Execution Steps", "Test Execution Steps",
	},
	colExpectedResult: {
		"Expected Result", "ExpectedOutcome", "expected_result", "Expected Output",
		"Expected outcome", "Expected Behavior", "Exp Result", "Expected",
		"Expected_Outcome",
	},
	colActualResult: {
		"Actual Result", "actual_result", "Actual outcome", "Actual Output",
		"Actual Behavior", "Observed Result", "Actual_Outcome", "Result Observed",
		"Observed Outcome",
	},
	colTestResult: {
		"Test Result", "Result", "test_result", "Outcome", "Test Outcome",
		"Test_Status", "Result Status", "Final Result", "Final Outcome",
		"Execution Result", "Result of Test",
	},
	colStatus: {
		"Status", "Test Status", "status", "Execution Status", "Run Status",
		"TestState", "State", "ExecutionState", "Current Status",
	},
	colComments: {
		"Comments (if any)", "Comments", "comments", "Comments(if any)", "Comment",
		"Comment(if any)", "Comment (if any)", "Comments (If any)", "Remarks", "Notes",
		"Note", "Remarks (if any)", "Observations", "Observation", "Comment(s)",
		"Additional Comments", "Test Notes",
	},
}

// columnOrder fixes which column wins when an alternative spelling is
// claimed by more than one ("Test_Status" belongs to test_result, not status).
var columnOrder = []string{
	colSNo, colTestCaseID, colTestSuite, colTestCaseDescription,
	colTestScenarioID, colTestScenario, colPrerequisite, colStepsToReproduce,
	colExpectedResult, colActualResult, colTestResult, colStatus, colComments,
}

// headerLookup is headerAlternatives inverted into a lowercase index.
var headerLookup = func() map[string]string {
	m := make(map[string]string)
	for _, col := range columnOrder {
		m[col] = col
		for _, alt := range headerAlternatives[col] {
			key := strings.ToLower(alt)
			if _, taken := m[key]; !taken {
				m[key] = col
			}
		}
	}
	return m
}()

// mapHeader resolves a spreadsheet header to its canonical column. Headers
// not in the alternatives table fall back to snake_case, which lets files
// that already use the canonical names pass through.
func mapHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if col, ok := headerLookup[h]; ok {
		return col
	}
	return strings.Join(strings.Fields(h), "_")
}
