// Package sqlxrepos implements the domain repositories over PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
)

const uniqueViolation = "23505"

// Repositories bundles every repository sharing one executor.
type Repositories struct {
	Users         *userRepository
	Academic      *academicRepository
	Profiles      *profileRepository
	Schedule      *scheduleRepository
	Grades        *gradeRepository
	Homeworks     *homeworkRepository
	Remarks       *remarkRepository
	News          *newsRepository
	Notifications *notificationRepository
}

func NewRepositories(exec core.DBExecutor) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(exec),
		Academic:      NewAcademicRepository(exec),
		Profiles:      NewProfileRepository(exec),
		Schedule:      NewScheduleRepository(exec),
		Grades:        NewGradeRepository(exec),
		Homeworks:     NewHomeworkRepository(exec),
		Remarks:       NewRemarkRepository(exec),
		News:          NewNewsRepository(exec),
		Notifications: NewNotificationRepository(exec),
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// validID reports whether id can be compared to a UUID column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs is validID over every non-empty id.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if id != "" && !validID(id) {
			return false
		}
	}
	return true
}

// trapNoRowsErr maps psql "no rows" err to the resource's not found error.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// uniqueConstraint returns the name of the violated unique constraint, if any.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// checkAffected returns notFound when the statement changed no row.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "getting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// inTx runs fn in a transaction, or directly if exec is one already.
func inTx(ctx context.Context, exec core.DBExecutor, fn func(core.DBExecutor) error) error {
	db, ok := exec.(core.DB)
	if !ok {
		return fn(exec)
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// where accumulates AND-ed conditions written with `?` bind vars.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// query builds the final statement in the executor's bind var syntax.
func (w *where) query(exec sqlx.ExtContext, base, suffix string, limit int) (string, []interface{}) {
	q := base + w.String() + suffix
	args := w.args
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	return exec.Rebind(q), args
}

// displayName is the SQL rendition of user.User.DisplayName for the users table aliased as `alias`.
func displayName(alias string) string {
	return "COALESCE(NULLIF(" + alias + ".name, ''), " + alias + ".username)"
}
