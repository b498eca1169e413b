package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/profile"
)

var (
	studentSelect = `
		SELECT st.id, st.user_id, st.group_id, st.course, st.specialty, st.gpa, st.attendance, st.created_at,
			` + displayName("u") + ` AS name, g.code AS group_code
		FROM students st
		JOIN users u ON u.id = st.user_id
		JOIN study_groups g ON g.id = st.group_id`

	teacherSelect = `
		SELECT t.id, t.user_id, t.department, t.created_at, ` + displayName("u") + ` AS name
		FROM teachers t
		JOIN users u ON u.id = t.user_id`

	directorSelect = `
		SELECT d.id, d.user_id, d.created_at, ` + displayName("u") + ` AS name
		FROM directors d
		JOIN users u ON u.id = d.user_id`
)

type profileRepository struct {
	exec core.DBExecutor
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(exec core.DBExecutor) *profileRepository {
	return &profileRepository{exec: exec}
}

func trapProfileErr(err error, msg string) error {
	if _, ok := uniqueConstraint(err); ok {
		return profile.ErrProfileExists
	}
	return errors.Wrap(err, msg)
}

// profileWhere selects a profile of the table aliased as `alias`; ok is false if nothing can match.
func profileWhere(alias string, filter profile.GetFilter) (where, bool) {
	var w where
	switch {
	case filter.ID != "":
		w.add(alias+".id = ?", filter.ID)
		return w, validID(filter.ID)
	case filter.UserID != "":
		w.add(alias+".user_id = ?", filter.UserID)
		return w, validID(filter.UserID)
	}
	return w, false
}

// Students

func (repo profileRepository) CreateStudent(ctx context.Context, st profile.Student) (profile.Student, error) {
	st.ID = newID(st.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec, `
		INSERT INTO students (id, user_id, group_id, course, specialty, gpa, attendance, created_at)
		VALUES (:id, :user_id, :group_id, :course, :specialty, :gpa, :attendance, :created_at)`,
		st)
	if err != nil {
		return profile.Student{}, trapProfileErr(err, "inserting student")
	}
	return st, nil
}

func (repo profileRepository) GetStudent(ctx context.Context, filter profile.GetFilter) (profile.Student, error) {
	w, ok := profileWhere("st", filter)
	if !ok {
		return profile.Student{}, profile.ErrStudentNotFound
	}
	q, args := w.query(repo.exec, studentSelect, "", 0)
	var st profile.Student
	if err := repo.exec.GetContext(ctx, &st, q, args...); err != nil {
		return profile.Student{}, trapNoRowsErr(err, profile.ErrStudentNotFound, "finding student")
	}
	return st, nil
}

func (repo profileRepository) ListStudents(ctx context.Context, filter profile.StudentFilter) ([]profile.Student, error) {
	students := make([]profile.Student, 0)
	var w where
	if filter.GroupID != "" {
		if !validID(filter.GroupID) {
			return students, nil
		}
		w.add("st.group_id = ?", filter.GroupID)
	}
	q, args := w.query(repo.exec, studentSelect, " ORDER BY name, st.id", 0)
	err := repo.exec.SelectContext(ctx, &students, q, args...)
	return students, errors.Wrap(err, "listing students")
}

func (repo profileRepository) StudentStats(ctx context.Context) (profile.StudentStats, error) {
	var stats profile.StudentStats
	err := repo.exec.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS count,
			COALESCE(AVG(gpa), 0) AS mean_gpa,
			COALESCE(AVG(attendance), 0) AS mean_attendance
		FROM students`)
	return stats, errors.Wrap(err, "computing student stats")
}

// Teachers

func insertTeacherSubjects(ctx context.Context, exec core.DBExecutor, teacherID string, subjectIDs []string) error {
	for _, subjID := range subjectIDs {
		if _, err := exec.ExecContext(ctx,
			`INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			teacherID, subjID); err != nil {
			return errors.Wrap(err, "inserting teacher subject")
		}
	}
	return nil
}

func (repo profileRepository) CreateTeacher(ctx context.Context, t profile.Teacher) (profile.Teacher, error) {
	t.ID = newID(t.ID)
	err := inTx(ctx, repo.exec, func(exec core.DBExecutor) error {
		_, err := sqlx.NamedExecContext(ctx, exec, `
			INSERT INTO teachers (id, user_id, department, created_at)
			VALUES (:id, :user_id, :department, :created_at)`,
			t)
		if err != nil {
			return trapProfileErr(err, "inserting teacher")
		}
		return insertTeacherSubjects(ctx, exec, t.ID, t.SubjectIDs)
	})
	if err != nil {
		return profile.Teacher{}, err
	}
	if t.SubjectIDs == nil {
		t.SubjectIDs = []string{}
	}
	return t, nil
}

func (repo profileRepository) subjectIDs(ctx context.Context, teacherIDs ...string) (map[string][]string, error) {
	var rows []struct {
		TeacherID string `db:"teacher_id"`
		SubjectID string `db:"subject_id"`
	}
	q, args, err := sqlx.In(`SELECT teacher_id, subject_id FROM teacher_subjects WHERE teacher_id IN (?) ORDER BY subject_id`, teacherIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building teacher subjects query")
	}
	if err = repo.exec.SelectContext(ctx, &rows, repo.exec.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "listing teacher subjects")
	}
	byTeacher := make(map[string][]string, len(teacherIDs))
	for _, r := range rows {
		byTeacher[r.TeacherID] = append(byTeacher[r.TeacherID], r.SubjectID)
	}
	return byTeacher, nil
}

func (repo profileRepository) withSubjects(ctx context.Context, teachers []profile.Teacher) error {
	if len(teachers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}
	byTeacher, err := repo.subjectIDs(ctx, ids...)
	if err != nil {
		return err
	}
	for i := range teachers {
		teachers[i].SubjectIDs = byTeacher[teachers[i].ID]
		if teachers[i].SubjectIDs == nil {
			teachers[i].SubjectIDs = []string{}
		}
	}
	return nil
}

func (repo profileRepository) GetTeacher(ctx context.Context, filter profile.GetFilter) (profile.Teacher, error) {
	w, ok := profileWhere("t", filter)
	if !ok {
		return profile.Teacher{}, profile.ErrTeacherNotFound
	}
	q, args := w.query(repo.exec, teacherSelect, "", 0)
	teachers := make([]profile.Teacher, 1)
	if err := repo.exec.GetContext(ctx, &teachers[0], q, args...); err != nil {
		return profile.Teacher{}, trapNoRowsErr(err, profile.ErrTeacherNotFound, "finding teacher")
	}
	if err := repo.withSubjects(ctx, teachers); err != nil {
		return profile.Teacher{}, err
	}
	return teachers[0], nil
}

func (repo profileRepository) ListTeachers(ctx context.Context) ([]profile.Teacher, error) {
	teachers := make([]profile.Teacher, 0)
	if err := repo.exec.SelectContext(ctx, &teachers, teacherSelect+` ORDER BY name, t.id`); err != nil {
		return nil, errors.Wrap(err, "listing teachers")
	}
	if err := repo.withSubjects(ctx, teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

func (repo profileRepository) CountTeachers(ctx context.Context) (int, error) {
	var n int
	err := repo.exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM teachers`)
	return n, errors.Wrap(err, "counting teachers")
}

func (repo profileRepository) SetTeacherSubjects(ctx context.Context, teacherID string, subjectIDs []string) error {
	if !validID(teacherID) {
		return profile.ErrTeacherNotFound
	}
	return inTx(ctx, repo.exec, func(exec core.DBExecutor) error {
		if _, err := exec.ExecContext(ctx, `DELETE FROM teacher_subjects WHERE teacher_id = $1`, teacherID); err != nil {
			return errors.Wrap(err, "clearing teacher subjects")
		}
		return insertTeacherSubjects(ctx, exec, teacherID, subjectIDs)
	})
}

// Directors

func (repo profileRepository) CreateDirector(ctx context.Context, d profile.Director) (profile.Director, error) {
	d.ID = newID(d.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO directors (id, user_id, created_at) VALUES (:id, :user_id, :created_at)`, d)
	if err != nil {
		return profile.Director{}, trapProfileErr(err, "inserting director")
	}
	return d, nil
}

func (repo profileRepository) GetDirector(ctx context.Context, filter profile.GetFilter) (profile.Director, error) {
	w, ok := profileWhere("d", filter)
	if !ok {
		return profile.Director{}, profile.ErrDirectorNotFound
	}
	q, args := w.query(repo.exec, directorSelect, "", 0)
	var d profile.Director
	if err := repo.exec.GetContext(ctx, &d, q, args...); err != nil {
		return profile.Director{}, trapNoRowsErr(err, profile.ErrDirectorNotFound, "finding director")
	}
	return d, nil
}
