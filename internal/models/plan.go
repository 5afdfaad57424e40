package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestPlan is a registry entry: a named selection of suites assigned to a
// set of write users. The execution rows live in PlanRow.
type TestPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	TestSuites    []string           `bson:"test_suite" json:"test_suite"`
	AssignedUsers []string           `bson:"assigned_users" json:"assigned_users"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// PlanRow is one test case's execution record inside one plan: its own
// result/status/comments plus an optional link to a bug. The same catalog
// test case gets an independent PlanRow in every plan that includes it.
type PlanRow struct {
	PlanID              primitive.ObjectID `bson:"plan_id" json:"-"`
	TestCaseID          string             `bson:"testcase_id" json:"testcase_id"`
	TestScenarioID      string             `bson:"test_scenario_id" json:"test_scenario_id"`
	TestScenario        string             `bson:"test_scenario" json:"test_scenario"`
	TestCaseDescription string             `bson:"testcase_description" json:"testcase_description"`
	Prerequisite        string             `bson:"prerequisite" json:"prerequisite"`
	StepsToReproduce    string             `bson:"steps_to_reproduce" json:"steps_to_reproduce"`
	ExpectedResult      string             `bson:"expected_result" json:"expected_result"`
	ActualResult        string             `bson:"actual_result" json:"actual_result"`
	TestResult          string             `bson:"test_result" json:"test_result"`
	Status              string             `bson:"status" json:"status"`
	Comments            string             `bson:"comments" json:"comments"`
	TestSuite           string             `bson:"test_suite" json:"test_suite"`
	ExecutedBy          string             `bson:"executed_by" json:"executed_by"`
	BugID               *int               `bson:"bug_id,omitempty" json:"bug_id,omitempty"`
	BugStatus           string             `bson:"bug_status,omitempty" json:"bug_status,omitempty"`
}

// RowUpdate carries the execution fields a tester may change on a PlanRow.
// Nil pointers mean "leave as is".
type RowUpdate struct {
	TestResult     *string `json:"test_result"`
	Status         *string `json:"status"`
	ActualResult   *string `json:"actual_result"`
	ExpectedResult *string `json:"expected_result"`
	Comments       *string `json:"comments"`
}

// Empty reports whether the update carries no fields at all.
func (u RowUpdate) Empty() bool {
	return u.TestResult == nil && u.Status == nil && u.ActualResult == nil &&
		u.ExpectedResult == nil && u.Comments == nil
}

// Distribution is one bucket of the plan summary (a status or result value
// and how many rows carry it).
type Distribution struct {
	Label string `bson:"_id" json:"label"`
	Count int64  `bson:"count" json:"count"`
}

// PlanSummary feeds the dashboard charts for one plan.
type PlanSummary struct {
	TestPlanName string         `json:"testPlanName"`
	StatusData   []Distribution `json:"statusData"`
	ResultData   []Distribution `json:"resultData"`
}
