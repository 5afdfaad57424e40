package models

import "time"

// TestCase is one row of the master catalog. Every execution row in a test
// plan starts as a snapshot of one of these.
type TestCase struct {
	SNo                 int    `bson:"s_no" json:"s_no"`
	TestCaseID          string `bson:"testcase_id" json:"testcase_id"`                   // "TC_001"
	TestScenarioID      string `bson:"test_scenario_id" json:"test_scenario_id"`         // "TS_Login_001"
	TestScenario        string `bson:"test_scenario" json:"test_scenario"`
	TestCaseDescription string `bson:"testcase_description" json:"testcase_description"`
	Prerequisite        string `bson:"prerequisite" json:"prerequisite"`
	StepsToReproduce    string `bson:"steps_to_reproduce" json:"steps_to_reproduce"`
	ExpectedResult      string `bson:"expected_result" json:"expected_result"`
	ActualResult        string `bson:"actual_result" json:"actual_result"`
	TestResult          string `bson:"test_result" json:"test_result"`
	Status              string `bson:"status" json:"status"`
	Comments            string `bson:"comments" json:"comments"`
	TestSuite           string `bson:"test_suite" json:"test_suite"`
}

// Pending request lifecycle values.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// PendingRequest is a test case submitted by a write user, waiting for an
// admin to approve it into the master catalog.
type PendingRequest struct {
	TestCaseID          int       `bson:"testcase_id" json:"testcase_id"`
	TestScenarioID      string    `bson:"test_scenario_id" json:"test_scenario_id"`
	TestScenario        string    `bson:"test_scenario" json:"test_scenario"`
	TestCaseDescription string    `bson:"testcase_description" json:"testcase_description"`
	Prerequisite        string    `bson:"prerequisite" json:"prerequisite"`
	StepsToReproduce    string    `bson:"steps_to_reproduce" json:"steps_to_reproduce"`
	ExpectedResult      string    `bson:"expected_result" json:"expected_result"`
	ActualResult        string    `bson:"actual_result" json:"actual_result"`
	TestResult          string    `bson:"test_result" json:"test_result"`
	Status              string    `bson:"status" json:"status"`
	Comments            string    `bson:"comments" json:"comments"`
	TestSuite           string    `bson:"test_suite" json:"test_suite"`
	SubmittedBy         string    `bson:"submitted_by" json:"submitted_by"`
	SubmittedAt         time.Time `bson:"submitted_at" json:"submitted_at"`
	RequestStatus       string    `bson:"request_status" json:"request_status"`
}
