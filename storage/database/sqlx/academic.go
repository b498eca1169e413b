package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/academic"
)

type academicRepository struct {
	exec core.DBExecutor
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(exec core.DBExecutor) *academicRepository {
	return &academicRepository{exec: exec}
}

func trapCodeErr(err error, msg string) error {
	if _, ok := uniqueConstraint(err); ok {
		return academic.ErrCodeExists
	}
	return errors.Wrap(err, msg)
}

func (repo academicRepository) CreateGroup(ctx context.Context, grp academic.Group) (academic.Group, error) {
	grp.ID = newID(grp.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO study_groups (id, name, code, created_at) VALUES (:id, :name, :code, :created_at)`, grp)
	if err != nil {
		return academic.Group{}, trapCodeErr(err, "inserting group")
	}
	return grp, nil
}

func (repo academicRepository) GetGroup(ctx context.Context, id string) (academic.Group, error) {
	if !validID(id) {
		return academic.Group{}, academic.ErrGroupNotFound
	}
	var grp academic.Group
	err := repo.exec.GetContext(ctx, &grp, `SELECT id, name, code, created_at FROM study_groups WHERE id = $1`, id)
	if err != nil {
		return academic.Group{}, trapNoRowsErr(err, academic.ErrGroupNotFound, "finding group")
	}
	return grp, nil
}

func (repo academicRepository) GetGroupByCode(ctx context.Context, code string) (academic.Group, error) {
	var grp academic.Group
	err := repo.exec.GetContext(ctx, &grp, `SELECT id, name, code, created_at FROM study_groups WHERE code = $1`, code)
	if err != nil {
		return academic.Group{}, trapNoRowsErr(err, academic.ErrGroupNotFound, "finding group by code")
	}
	return grp, nil
}

func (repo academicRepository) ListGroups(ctx context.Context) ([]academic.Group, error) {
	groups := make([]academic.Group, 0)
	err := repo.exec.SelectContext(ctx, &groups, `SELECT id, name, code, created_at FROM study_groups ORDER BY code`)
	return groups, errors.Wrap(err, "listing groups")
}

func (repo academicRepository) CreateSubject(ctx context.Context, subj academic.Subject) (academic.Subject, error) {
	subj.ID = newID(subj.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO subjects (id, name, code, created_at) VALUES (:id, :name, :code, :created_at)`, subj)
	if err != nil {
		return academic.Subject{}, trapCodeErr(err, "inserting subject")
	}
	return subj, nil
}

func (repo academicRepository) GetSubject(ctx context.Context, id string) (academic.Subject, error) {
	if !validID(id) {
		return academic.Subject{}, academic.ErrSubjectNotFound
	}
	var subj academic.Subject
	err := repo.exec.GetContext(ctx, &subj, `SELECT id, name, code, created_at FROM subjects WHERE id = $1`, id)
	if err != nil {
		return academic.Subject{}, trapNoRowsErr(err, academic.ErrSubjectNotFound, "finding subject")
	}
	return subj, nil
}

func (repo academicRepository) GetSubjectByCode(ctx context.Context, code string) (academic.Subject, error) {
	var subj academic.Subject
	err := repo.exec.GetContext(ctx, &subj, `SELECT id, name, code, created_at FROM subjects WHERE code = $1`, code)
	if err != nil {
		return academic.Subject{}, trapNoRowsErr(err, academic.ErrSubjectNotFound, "finding subject by code")
	}
	return subj, nil
}

func (repo academicRepository) ListSubjects(ctx context.Context) ([]academic.Subject, error) {
	subjects := make([]academic.Subject, 0)
	err := repo.exec.SelectContext(ctx, &subjects, `SELECT id, name, code, created_at FROM subjects ORDER BY name, code`)
	return subjects, errors.Wrap(err, "listing subjects")
}
