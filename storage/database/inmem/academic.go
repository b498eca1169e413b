package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/college/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateGroup(_ context.Context, grp academic.Group) (academic.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, g := range repo.db.groups {
		if g.Code == grp.Code {
			return academic.Group{}, academic.ErrCodeExists
		}
	}
	grp.ID = newID(grp.ID)
	repo.db.groups = append(repo.db.groups, grp)
	return grp, nil
}

func (repo *academicRepository) findGroup(match func(academic.Group) bool) (academic.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, g := range repo.db.groups {
		if match(g) {
			return g, nil
		}
	}
	return academic.Group{}, academic.ErrGroupNotFound
}

func (repo *academicRepository) GetGroup(_ context.Context, id string) (academic.Group, error) {
	return repo.findGroup(func(g academic.Group) bool { return g.ID == id })
}

func (repo *academicRepository) GetGroupByCode(_ context.Context, code string) (academic.Group, error) {
	return repo.findGroup(func(g academic.Group) bool { return g.Code == code })
}

func (repo *academicRepository) ListGroups(_ context.Context) ([]academic.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	groups := append(make([]academic.Group, 0, len(repo.db.groups)), repo.db.groups...)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Code < groups[j].Code })
	return groups, nil
}

func (repo *academicRepository) CreateSubject(_ context.Context, subj academic.Subject) (academic.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, s := range repo.db.subjects {
		if s.Code == subj.Code {
			return academic.Subject{}, academic.ErrCodeExists
		}
	}
	subj.ID = newID(subj.ID)
	repo.db.subjects = append(repo.db.subjects, subj)
	return subj, nil
}

func (repo *academicRepository) findSubject(match func(academic.Subject) bool) (academic.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.subjects {
		if match(s) {
			return s, nil
		}
	}
	return academic.Subject{}, academic.ErrSubjectNotFound
}

func (repo *academicRepository) GetSubject(_ context.Context, id string) (academic.Subject, error) {
	return repo.findSubject(func(s academic.Subject) bool { return s.ID == id })
}

func (repo *academicRepository) GetSubjectByCode(_ context.Context, code string) (academic.Subject, error) {
	return repo.findSubject(func(s academic.Subject) bool { return s.Code == code })
}

func (repo *academicRepository) ListSubjects(_ context.Context) ([]academic.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := append(make([]academic.Subject, 0, len(repo.db.subjects)), repo.db.subjects...)
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].Name != subjects[j].Name {
			return subjects[i].Name < subjects[j].Name
		}
		return subjects[i].Code < subjects[j].Code
	})
	return subjects, nil
}
