package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/grade"
	"github.com/trezcool/college/core/homework"
)

var (
	gradeSelect = `
		SELECT gr.id, gr.student_id, gr.subject_id, gr.value, gr.note, gr.created_at,
			s.name AS subject_name, ` + displayName("u") + ` AS student_name, g.code AS group_code
		FROM grades gr
		JOIN subjects s ON s.id = gr.subject_id
		JOIN students st ON st.id = gr.student_id
		JOIN users u ON u.id = st.user_id
		JOIN study_groups g ON g.id = st.group_id`

	homeworkSelect = `
		SELECT h.id, h.student_id, h.subject_id, h.title, h.description, h.deadline, h.completed, h.created_at,
			st.user_id AS owner_id, s.name AS subject_name, ` + displayName("u") + ` AS student_name, g.code AS group_code
		FROM homeworks h
		JOIN subjects s ON s.id = h.subject_id
		JOIN students st ON st.id = h.student_id
		JOIN users u ON u.id = st.user_id
		JOIN study_groups g ON g.id = st.group_id`
)

// courseworkWhere builds the conditions shared by grade & homework filters; ok is false if nothing can match.
func courseworkWhere(alias, studentID, groupID, subjectID string, subjectIDs []string, restrict bool) (where, bool) {
	var w where
	if !validIDs(studentID, groupID, subjectID) || !validIDs(subjectIDs...) {
		return w, false
	}
	if restrict && len(subjectIDs) == 0 {
		return w, false
	}
	if studentID != "" {
		w.add(alias+".student_id = ?", studentID)
	}
	if groupID != "" {
		w.add("st.group_id = ?", groupID)
	}
	if subjectID != "" {
		w.add(alias+".subject_id = ?", subjectID)
	}
	if restrict {
		w.add(alias+".subject_id = ANY(?::uuid[])", pq.Array(subjectIDs))
	}
	return w, true
}

// Grades

type gradeRepository struct {
	exec core.DBExecutor
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(exec core.DBExecutor) *gradeRepository {
	return &gradeRepository{exec: exec}
}

func (repo gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	g.ID = newID(g.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec, `
		INSERT INTO grades (id, student_id, subject_id, value, note, created_at)
		VALUES (:id, :student_id, :subject_id, :value, :note, :created_at)`,
		g)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo gradeRepository) ListGrades(ctx context.Context, filter grade.Filter) ([]grade.Grade, error) {
	grades := make([]grade.Grade, 0)
	w, ok := courseworkWhere("gr", filter.StudentID, filter.GroupID, filter.SubjectID, filter.SubjectIDs, filter.RestrictSubjects)
	if !ok {
		return grades, nil
	}
	q, args := w.query(repo.exec, gradeSelect, ` ORDER BY gr.created_at DESC, gr.id`, filter.Limit)
	err := repo.exec.SelectContext(ctx, &grades, q, args...)
	return grades, errors.Wrap(err, "listing grades")
}

// Homework

type homeworkRepository struct {
	exec core.DBExecutor
}

var _ homework.Repository = (*homeworkRepository)(nil) // interface compliance check

func NewHomeworkRepository(exec core.DBExecutor) *homeworkRepository {
	return &homeworkRepository{exec: exec}
}

func (repo homeworkRepository) CreateHomework(ctx context.Context, hw homework.Homework) (homework.Homework, error) {
	hw.ID = newID(hw.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec, `
		INSERT INTO homeworks (id, student_id, subject_id, title, description, deadline, completed, created_at)
		VALUES (:id, :student_id, :subject_id, :title, :description, :deadline, :completed, :created_at)`,
		hw)
	if err != nil {
		return homework.Homework{}, errors.Wrap(err, "inserting homework")
	}
	return hw, nil
}

func (repo homeworkRepository) GetHomework(ctx context.Context, id string) (homework.Homework, error) {
	if !validID(id) {
		return homework.Homework{}, homework.ErrNotFound
	}
	var hw homework.Homework
	if err := repo.exec.GetContext(ctx, &hw, repo.exec.Rebind(homeworkSelect+` WHERE h.id = ?`), id); err != nil {
		return homework.Homework{}, trapNoRowsErr(err, homework.ErrNotFound, "finding homework")
	}
	return hw, nil
}

func (repo homeworkRepository) ToggleHomework(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, homework.ErrNotFound
	}
	var completed bool
	err := repo.exec.GetContext(ctx, &completed,
		`UPDATE homeworks SET completed = NOT completed WHERE id = $1 RETURNING completed`, id)
	if err != nil {
		return false, trapNoRowsErr(err, homework.ErrNotFound, "toggling homework")
	}
	return completed, nil
}

func (repo homeworkRepository) ListHomeworks(ctx context.Context, filter homework.Filter) ([]homework.Homework, error) {
	hws := make([]homework.Homework, 0)
	w, ok := courseworkWhere("h", filter.StudentID, filter.GroupID, filter.SubjectID, filter.SubjectIDs, filter.RestrictSubjects)
	if !ok {
		return hws, nil
	}
	q, args := w.query(repo.exec, homeworkSelect, ` ORDER BY h.completed, h.deadline, h.created_at DESC, h.id`, filter.Limit)
	err := repo.exec.SelectContext(ctx, &hws, q, args...)
	return hws, errors.Wrap(err, "listing homework")
}
