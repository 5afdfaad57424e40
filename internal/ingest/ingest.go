// Package ingest turns uploaded CSV and Excel sheets into catalog test
// cases. Column headers are matched against the spellings different teams
// use for the same field, so exports from most tracking sheets load without
// manual renaming.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Johaan1835/TestMatrix/internal/models"
)

// ParseCSV reads a headered CSV stream into test cases. Serial numbers and
// test case ids in the file are discarded; the store assigns fresh ones on
// import. defaultSuite fills rows whose suite column is empty.
func ParseCSV(r io.Reader, defaultSuite string) ([]models.TestCase, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv data is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var cases []models.TestCase
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(cases)+2, err)
		}
		if tc, ok := buildCase(columns, record, defaultSuite); ok {
			cases = append(cases, tc)
		}
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("csv data is empty")
	}
	return cases, nil
}

// ParseExcel reads the first sheet of an xlsx workbook, treating row one as
// the header row. Same id and suite handling as ParseCSV.
func ParseExcel(r io.Reader, defaultSuite string) ([]models.TestCase, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var cases []models.TestCase
	for _, record := range rows[1:] {
		if tc, ok := buildCase(columns, record, defaultSuite); ok {
			cases = append(cases, tc)
		}
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheets[0])
	}
	return cases, nil
}

// resolveColumns maps each header cell to a canonical column, rejecting
// headers that resolve to nothing the catalog knows about.
func resolveColumns(header []string) ([]string, error) {
	known := make(map[string]bool, len(columnOrder))
	for _, col := range columnOrder {
		known[col] = true
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			continue
		}
		col := mapHeader(h)
		if !known[col] {
			return nil, fmt.Errorf("unrecognized column %q", strings.TrimSpace(h))
		}
		columns[i] = col
	}
	return columns, nil
}

// buildCase maps one data record onto a TestCase. Rows with every cell blank
// are skipped. Incoming s_no and testcase_id values are dropped.
func buildCase(columns []string, record []string, defaultSuite string) (models.TestCase, bool) {
	var tc models.TestCase
	blank := true

	for i, col := range columns {
		if col == "" || i >= len(record) {
			continue
		}
		val := strings.TrimSpace(record[i])
		if val != "" {
			blank = false
		}
		switch col {
		case colTestSuite:
			tc.TestSuite = val
		case colTestCaseDescription:
			tc.TestCaseDescription = val
		case colTestScenarioID:
			tc.TestScenarioID = val
		case colTestScenario:
			tc.TestScenario = val
		case colPrerequisite:
			tc.Prerequisite = val
		case colStepsToReproduce:
			tc.StepsToReproduce = val
		case colExpectedResult:
			tc.ExpectedResult = val
		case colActualResult:
			tc.ActualResult = val
		case colTestResult:
			tc.TestResult = val
		case colStatus:
			tc.Status = val
		case colComments:
			tc.Comments = val
		}
	}
	if blank {
		return models.TestCase{}, false
	}
	if tc.TestSuite == "" {
		tc.TestSuite = defaultSuite
	}
	return tc, true
}
