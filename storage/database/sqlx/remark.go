package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/remark"
)

var (
	remarkFrom = `
		FROM remarks r
		JOIN students st ON st.id = r.student_id
		JOIN users su ON su.id = st.user_id
		JOIN study_groups g ON g.id = st.group_id
		JOIN users au ON au.id = r.author_id
		LEFT JOIN teachers t ON t.id = r.teacher_id
		LEFT JOIN users tu ON tu.id = t.user_id`

	remarkSelect = `
		SELECT r.id, r.student_id, r.teacher_id, r.author_id, r.level, r.text, r.resolved, r.created_at,
			` + displayName("su") + ` AS student_name, g.code AS group_code,
			CASE WHEN t.id IS NULL THEN NULL ELSE ` + displayName("tu") + ` END AS teacher_name,
			` + displayName("au") + ` AS author_name` + remarkFrom
)

type remarkRepository struct {
	exec core.DBExecutor
}

var _ remark.Repository = (*remarkRepository)(nil) // interface compliance check

func NewRemarkRepository(exec core.DBExecutor) *remarkRepository {
	return &remarkRepository{exec: exec}
}

func remarkWhere(filter remark.Filter) (where, bool) {
	var w where
	if !validIDs(filter.StudentID, filter.InvolvingTeacherID, filter.InvolvingAuthorID) {
		return w, false
	}
	if filter.StudentID != "" {
		w.add("r.student_id = ?", filter.StudentID)
	}
	switch {
	case filter.InvolvingTeacherID != "" && filter.InvolvingAuthorID != "":
		w.add("(r.teacher_id = ? OR r.author_id = ?)", filter.InvolvingTeacherID, filter.InvolvingAuthorID)
	case filter.InvolvingTeacherID != "":
		w.add("r.teacher_id = ?", filter.InvolvingTeacherID)
	case filter.InvolvingAuthorID != "":
		w.add("r.author_id = ?", filter.InvolvingAuthorID)
	}
	switch filter.Status {
	case remark.StatusOpen:
		w.add("NOT r.resolved")
	case remark.StatusResolved:
		w.add("r.resolved")
	}
	if filter.Level != "" {
		w.add("r.level = ?", string(filter.Level))
	}
	return w, true
}

func (repo remarkRepository) CreateRemark(ctx context.Context, r remark.Remark) (remark.Remark, error) {
	r.ID = newID(r.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec, `
		INSERT INTO remarks (id, student_id, teacher_id, author_id, level, text, resolved, created_at)
		VALUES (:id, :student_id, :teacher_id, :author_id, :level, :text, :resolved, :created_at)`,
		r)
	if err != nil {
		return remark.Remark{}, errors.Wrap(err, "inserting remark")
	}
	return r, nil
}

func (repo remarkRepository) GetRemark(ctx context.Context, id string) (remark.Remark, error) {
	if !validID(id) {
		return remark.Remark{}, remark.ErrNotFound
	}
	var r remark.Remark
	if err := repo.exec.GetContext(ctx, &r, repo.exec.Rebind(remarkSelect+` WHERE r.id = ?`), id); err != nil {
		return remark.Remark{}, trapNoRowsErr(err, remark.ErrNotFound, "finding remark")
	}
	return r, nil
}

func (repo remarkRepository) ResolveRemark(ctx context.Context, id string) error {
	if !validID(id) {
		return remark.ErrNotFound
	}
	res, err := repo.exec.ExecContext(ctx, `UPDATE remarks SET resolved = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "resolving remark")
	}
	return checkAffected(res, remark.ErrNotFound)
}

func (repo remarkRepository) ListRemarks(ctx context.Context, filter remark.Filter) ([]remark.Remark, error) {
	remarks := make([]remark.Remark, 0)
	w, ok := remarkWhere(filter)
	if !ok {
		return remarks, nil
	}
	q, args := w.query(repo.exec, remarkSelect, ` ORDER BY r.resolved, r.created_at DESC, r.id`, filter.Limit)
	err := repo.exec.SelectContext(ctx, &remarks, q, args...)
	return remarks, errors.Wrap(err, "listing remarks")
}

func (repo remarkRepository) CountRemarks(ctx context.Context, filter remark.Filter) (int, error) {
	w, ok := remarkWhere(filter)
	if !ok {
		return 0, nil
	}
	q, args := w.query(repo.exec, `SELECT COUNT(*)`+remarkFrom, "", 0)
	var n int
	err := repo.exec.GetContext(ctx, &n, q, args...)
	return n, errors.Wrap(err, "counting remarks")
}
