package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/schedule"
)

var entrySelect = `
	SELECT e.id, e.group_id, e.subject_id, e.teacher_id, e.weekday, e.time_start, e.time_end, e.location,
		g.code AS group_code, s.name AS subject_name, ` + displayName("u") + ` AS teacher_name
	FROM schedule_entries e
	JOIN study_groups g ON g.id = e.group_id
	JOIN subjects s ON s.id = e.subject_id
	JOIN teachers t ON t.id = e.teacher_id
	JOIN users u ON u.id = t.user_id`

var errEntryNotFound = core.NewNotFoundError("schedule entry")

type scheduleRepository struct {
	exec core.DBExecutor
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(exec core.DBExecutor) *scheduleRepository {
	return &scheduleRepository{exec: exec}
}

func (repo scheduleRepository) CreateEntry(ctx context.Context, e schedule.Entry) (schedule.Entry, error) {
	e.ID = newID(e.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec, `
		INSERT INTO schedule_entries (id, group_id, subject_id, teacher_id, weekday, time_start, time_end, location)
		VALUES (:id, :group_id, :subject_id, :teacher_id, :weekday, :time_start, :time_end, :location)`,
		e)
	if err != nil {
		return schedule.Entry{}, errors.Wrap(err, "inserting schedule entry")
	}

	// reload for the joined display fields
	var created schedule.Entry
	if err = repo.exec.GetContext(ctx, &created, repo.exec.Rebind(entrySelect+` WHERE e.id = ?`), e.ID); err != nil {
		return schedule.Entry{}, trapNoRowsErr(err, errEntryNotFound, "finding schedule entry")
	}
	return created, nil
}

func (repo scheduleRepository) DeleteGroupEntries(ctx context.Context, groupID string) error {
	if !validID(groupID) {
		return nil
	}
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM schedule_entries WHERE group_id = $1`, groupID)
	return errors.Wrap(err, "deleting group schedule")
}

func (repo scheduleRepository) ListEntries(ctx context.Context, filter schedule.Filter) ([]schedule.Entry, error) {
	entries := make([]schedule.Entry, 0)
	if !validIDs(filter.GroupID, filter.TeacherID) {
		return entries, nil
	}
	var w where
	if filter.GroupID != "" {
		w.add("e.group_id = ?", filter.GroupID)
	}
	if filter.TeacherID != "" {
		w.add("e.teacher_id = ?", filter.TeacherID)
	}

	q, args := w.query(repo.exec, entrySelect, ` ORDER BY e.weekday, e.time_start, e.id`, 0)
	err := repo.exec.SelectContext(ctx, &entries, q, args...)
	return entries, errors.Wrap(err, "listing schedule entries")
}
