package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Columns is the expected header row.
var Columns = []string{
	"Team", "Project", "Task", "Description", "Assignee email", "Deadline", "Status", "Complete %",
}

const (
	colTeam = iota
	colProject
	colTask
	colDescription
	colAssignee
	colDeadline
	colStatus
	colPercent
)

var (
	// ErrBadHeader is returned when the first row does not name the expected columns.
	ErrBadHeader = fmt.Errorf("%w: unexpected spreadsheet header", domain.ErrValidation)

	errMissingCell     = fmt.Errorf("%w: required cell is empty", domain.ErrValidation)
	errInvalidDeadline = fmt.Errorf("%w: invalid deadline", domain.ErrValidation)
)

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
}

// row is one parsed task line.
type row struct {
	Line            int
	Team            string
	Project         string
	Task            string
	Description     string
	AssigneeEmail   string
	Deadline        time.Time
	Status          domain.Status
	CompletePercent int
}

func checkHeader(header []string) error {
	if len(header) < len(Columns) {
		return fmt.Errorf("%w: want %d columns, got %d", ErrBadHeader, len(Columns), len(header))
	}
	for i, want := range Columns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, header[i], want)
		}
	}
	return nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// parseRow converts raw cell values. line is the 1-based sheet row used in errors.
func parseRow(line int, cells []string) (row, error) {
	r := row{
		Line:          line,
		Team:          cell(cells, colTeam),
		Project:       cell(cells, colProject),
		Task:          cell(cells, colTask),
		Description:   cell(cells, colDescription),
		AssigneeEmail: domain.NormalizeEmail(cell(cells, colAssignee)),
		Status:        domain.StatusNotStarted,
	}

	required := []struct{ name, value string }{
		{"team", r.Team},
		{"project", r.Project},
		{"task", r.Task},
	}
	for _, c := range required {
		if c.value == "" {
			return r, fmt.Errorf("row %d: %s: %w", line, c.name, errMissingCell)
		}
	}

	if r.AssigneeEmail != "" {
		if err := domain.ValidateEmail(r.AssigneeEmail); err != nil {
			return r, fmt.Errorf("row %d: assignee: %w", line, err)
		}
	}

	deadline, err := parseDeadline(cell(cells, colDeadline))
	if err != nil {
		return r, fmt.Errorf("row %d: deadline: %w", line, err)
	}
	r.Deadline = deadline

	if s := cell(cells, colStatus); s != "" {
		if r.Status, err = domain.ParseStatus(s); err != nil {
			return r, fmt.Errorf("row %d: %w", line, err)
		}
	}

	if p := cell(cells, colPercent); p != "" {
		if r.CompletePercent, err = parsePercent(p); err != nil {
			return r, fmt.Errorf("row %d: %w", line, err)
		}
	}

	return r, nil
}

// parseDeadline accepts an Excel date serial (raw cell value) or a text date.
func parseDeadline(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errMissingCell
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", errInvalidDeadline, s)
		}
		return t.UTC().Round(time.Second), nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errInvalidDeadline, s)
}

func parsePercent(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, domain.ErrInvalidPercent
	}
	p := int(math.Round(f))
	if err := domain.ValidateCompletePercent(p); err != nil {
		return 0, err
	}
	return p, nil
}
