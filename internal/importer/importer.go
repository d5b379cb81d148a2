package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
	"github.com/xuri/excelize/v2"
)

// Result counts what an import touched.
type Result struct {
	Sheet      string `json:"sheet"`
	Rows       int    `json:"rows"`
	Teams      int    `json:"teams"`
	Projects   int    `json:"projects"`
	Tasks      int    `json:"tasks"`
	Unassigned int    `json:"unassigned"`
}

// Importer writes spreadsheet rows to the stores in one transaction.
type Importer struct {
	db     *sqlx.DB
	users  store.UserStore
	teams  store.TeamStore
	tasks  store.TaskStore
	logger *slog.Logger
}

// New creates an Importer.
func New(
	db *sqlx.DB,
	users store.UserStore,
	teams store.TeamStore,
	tasks store.TaskStore,
	logger *slog.Logger,
) *Importer {
	return &Importer{
		db:     db,
		users:  users,
		teams:  teams,
		tasks:  tasks,
		logger: logger.With("component", "importer"),
	}
}

// ImportFile imports the named sheet of the xlsx file at path. An empty sheet
// name selects the first sheet.
func (i *Importer) ImportFile(ctx context.Context, path, sheet string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return i.importWorkbook(ctx, f, sheet)
}

// Import reads an xlsx workbook from r.
func (i *Importer) Import(ctx context.Context, r io.Reader, sheet string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()
	return i.importWorkbook(ctx, f, sheet)
}

func (i *Importer) importWorkbook(ctx context.Context, f *excelize.File, sheet string) (*Result, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrBadHeader, sheet)
	}
	if err := checkHeader(cells[0]); err != nil {
		return nil, err
	}

	// Parse everything before writing so a bad row leaves the database untouched.
	rows := make([]row, 0, len(cells)-1)
	for idx, line := range cells[1:] {
		if isBlank(line) {
			continue
		}
		if err := displayedPercent(f, sheet, idx+2, line); err != nil {
			return nil, err
		}
		r, err := parseRow(idx+2, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}

	result := &Result{Sheet: sheet, Rows: len(rows)}
	err = store.RunInTransaction(ctx, i.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return i.apply(ctx, tx, rows, result)
	})
	if err != nil {
		return nil, err
	}

	i.logger.InfoContext(ctx, "spreadsheet imported",
		slog.String("sheet", result.Sheet),
		slog.Int("rows", result.Rows),
		slog.Int("teams", result.Teams),
		slog.Int("projects", result.Projects),
		slog.Int("tasks", result.Tasks),
		slog.Int("unassigned", result.Unassigned))
	return result, nil
}

// displayedPercent replaces the raw value of a percent-formatted cell, which
// excel stores as a fraction (0.5), with its displayed text ("50%").
func displayedPercent(f *excelize.File, sheet string, line int, cells []string) error {
	if cell(cells, colPercent) == "" {
		return nil
	}
	ref, err := excelize.CoordinatesToCellName(colPercent+1, line)
	if err != nil {
		return fmt.Errorf("failed to address percent cell on row %d: %w", line, err)
	}
	shown, err := f.GetCellValue(sheet, ref)
	if err != nil {
		return fmt.Errorf("failed to read cell %s: %w", ref, err)
	}
	if strings.HasSuffix(strings.TrimSpace(shown), "%") {
		cells[colPercent] = shown
	}
	return nil
}

func (i *Importer) apply(ctx context.Context, tx store.DBTX, rows []row, result *Result) error {
	users := i.users.WithTx(tx)
	teams := i.teams.WithTx(tx)
	tasks := i.tasks.WithTx(tx)

	teamIDs := make(map[string]uuid.UUID)
	projectIDs := make(map[string]uuid.UUID)
	assignees := make(map[string]*uuid.UUID)

	for _, r := range rows {
		teamID, ok := teamIDs[r.Team]
		if !ok {
			team, err := teams.EnsureTeam(ctx, r.Team)
			if err != nil {
				return fmt.Errorf("row %d: %w", r.Line, err)
			}
			teamID = team.ID
			teamIDs[r.Team] = teamID
		}

		projectID, ok := projectIDs[r.Project]
		if !ok {
			project, err := teams.EnsureProject(ctx, r.Project, teamID)
			if err != nil {
				return fmt.Errorf("row %d: %w", r.Line, err)
			}
			projectID = project.ID
			projectIDs[r.Project] = projectID
		}

		assigneeID, err := i.resolveAssignee(ctx, users, r, teamID, assignees)
		if err != nil {
			return err
		}
		if assigneeID == nil {
			result.Unassigned++
		}

		task := &domain.Task{
			ProjectID:       projectID,
			Name:            r.Task,
			Description:     r.Description,
			CurrentStatus:   r.Status,
			CompletePercent: r.CompletePercent,
			AssigneeID:      assigneeID,
			Deadline:        r.Deadline,
		}
		if err := tasks.Upsert(ctx, task); err != nil {
			return fmt.Errorf("row %d: %w", r.Line, err)
		}
		result.Tasks++
	}

	result.Teams = len(teamIDs)
	result.Projects = len(projectIDs)
	return nil
}

// resolveAssignee looks up the row's assignee by email. Unknown users leave the
// task unassigned rather than failing the import; known users without a team
// join teamID.
func (i *Importer) resolveAssignee(
	ctx context.Context,
	users store.UserStore,
	r row,
	teamID uuid.UUID,
	cache map[string]*uuid.UUID,
) (*uuid.UUID, error) {
	if r.AssigneeEmail == "" {
		return nil, nil
	}
	if id, ok := cache[r.AssigneeEmail]; ok {
		return id, nil
	}

	user, err := users.GetByEmail(ctx, r.AssigneeEmail)
	switch {
	case errors.Is(err, store.ErrNotFound):
		i.logger.WarnContext(ctx, "assignee not registered, leaving task unassigned",
			slog.Int("row", r.Line),
			slog.String("task", r.Task))
		cache[r.AssigneeEmail] = nil
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("row %d: failed to look up assignee: %w", r.Line, err)
	}

	// Team membership is granted here, not through the profile endpoint.
	if user.TeamID == nil {
		user.TeamID = &teamID
		user.UpdatedAt = time.Now().UTC()
		if err := users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("row %d: failed to set assignee team: %w", r.Line, err)
		}
		i.logger.InfoContext(ctx, "assignee joined team",
			slog.Int("row", r.Line),
			slog.String("user_id", user.ID.String()),
			slog.String("team", r.Team))
	}

	id := user.ID
	cache[r.AssigneeEmail] = &id
	return &id, nil
}
