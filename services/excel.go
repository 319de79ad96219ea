package services

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"risehub/logger"
	"risehub/models"
	"risehub/utils"
)

const (
	leadSheet   = "Leads"
	rosterSheet = "Roster"
)

// LeadRow is one parsed row of a lead import sheet.
type LeadRow struct {
	Row           int
	FullName      string
	Email         string
	PhoneNumber   string
	Age           string
	CourseTitle   string
	HowDidYouHear string
	Message       string
}

// ParseLeadSheet reads the first sheet of an XLSX upload. Columns are found
// by header name, so their order does not matter. Blank rows are skipped.
func ParseLeadSheet(r io.Reader) ([]LeadRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheetName := sheetList[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data in sheet")
	}
	if len(rows)-1 > utils.MaxImportRows {
		return nil, fmt.Errorf("sheet has %d rows, the limit is %d", len(rows)-1, utils.MaxImportRows)
	}

	cols := detectColumns(rows[0])
	if cols["name"] < 0 || cols["email"] < 0 || cols["phone"] < 0 {
		return nil, fmt.Errorf("sheet must have name, email and phone columns")
	}
	logger.Debug("Parsing lead sheet %s with columns %v", sheetName, cols)

	var out []LeadRow
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}
		lr := LeadRow{
			Row:           i + 1,
			FullName:      extractField(row, cols["name"]),
			Email:         extractField(row, cols["email"]),
			PhoneNumber:   extractField(row, cols["phone"]),
			Age:           extractField(row, cols["age"]),
			CourseTitle:   extractField(row, cols["course"]),
			HowDidYouHear: extractField(row, cols["how_did_you_hear"]),
			Message:       extractField(row, cols["message"]),
		}
		if lr.FullName == "" && lr.Email == "" && lr.PhoneNumber == "" {
			continue
		}
		out = append(out, lr)
	}
	return out, nil
}

// detectColumns finds column indices by matching header names
func detectColumns(headers []string) map[string]int {
	indices := map[string]int{
		"name":             -1,
		"email":            -1,
		"phone":            -1,
		"age":              -1,
		"course":           -1,
		"how_did_you_hear": -1,
		"message":          -1,
	}

	for i, header := range headers {
		lower := strings.ToLower(strings.TrimSpace(header))

		switch lower {
		case "name", "full name", "full_name", "student name":
			indices["name"] = i
		case "email", "e-mail", "email address":
			indices["email"] = i
		case "phone", "mobile", "phone number", "phone_number", "contact number":
			indices["phone"] = i
		case "age":
			indices["age"] = i
		case "course", "interested course", "course title":
			indices["course"] = i
		case "how did you hear", "how_did_you_hear", "source", "lead source":
			indices["how_did_you_hear"] = i
		case "message", "notes":
			indices["message"] = i
		}
	}
	return indices
}

// extractField safely extracts a field from a row
func extractField(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

var leadHeaders = []string{
	"ID", "Full Name", "Email", "Phone", "Age", "Course", "Preferred Cohort",
	"How Did You Hear", "Message", "Contacted", "Converted", "Submitted",
}

// WriteLeadSheet renders leads as an XLSX workbook.
func WriteLeadSheet(leads []models.LeadResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leadSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeHeader(f, leadSheet, leadHeaders); err != nil {
		return nil, err
	}

	for i, l := range leads {
		age := ""
		if l.Age != nil {
			age = strconv.Itoa(*l.Age)
		}
		values := []interface{}{
			l.ID, l.FullName, l.Email, l.PhoneNumber, age, l.CourseTitle, l.CohortName,
			l.HowDidYouHear, l.Message, yesNo(l.Contacted), yesNo(l.ConvertedToEnrollment),
			l.CreatedAt.Format(utils.DateTimeLayout),
		}
		if err := writeRow(f, leadSheet, i+2, values); err != nil {
			return nil, err
		}
	}
	return finish(f)
}

// RosterRow is one student on a cohort roster.
type RosterRow struct {
	Student    models.User
	Phone      string
	Enrollment models.EnrollmentResponse
}

var rosterHeaders = []string{
	"Enrollment", "Student", "Email", "Phone", "Status", "Amount Paid", "Paid",
	"Payment Method", "Attendance", "Assignments", "Enrolled",
}

// WriteRosterSheet renders a cohort's students as an XLSX workbook.
func WriteRosterSheet(cohort models.CohortSummary, rows []RosterRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	title := fmt.Sprintf("%s - %s (%d of %d seats taken)", cohort.CourseTitle, cohort.Name, cohort.EnrollmentCount, cohort.MaxStudents)
	if err := f.SetCellValue(rosterSheet, "A1", title); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}
	if err := writeHeaderAt(f, rosterSheet, 2, rosterHeaders); err != nil {
		return nil, err
	}

	for i, r := range rows {
		e := r.Enrollment
		values := []interface{}{
			e.ID, r.Student.FullName(), r.Student.Email, r.Phone, string(e.Status),
			e.AmountPaid.String(), yesNo(e.IsPaid), e.PaymentMethod,
			e.AttendanceCount, e.AssignmentsCompleted, e.EnrolledAt.Format(utils.DateLayout),
		}
		if err := writeRow(f, rosterSheet, i+3, values); err != nil {
			return nil, err
		}
	}
	return finish(f)
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	return writeHeaderAt(f, sheet, 1, headers)
}

func writeHeaderAt(f *excelize.File, sheet string, row int, headers []string) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, row, values); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(headers), row)
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func finish(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
