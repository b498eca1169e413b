package inmemdb

import (
	"context"

	"github.com/trezcool/college/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) fill(e schedule.Entry) schedule.Entry {
	e.GroupCode = repo.db.groupCode(e.GroupID)
	e.SubjectName = repo.db.subjectName(e.SubjectID)
	t, _ := repo.db.teacherByID(e.TeacherID)
	e.TeacherName = t.Name
	return e
}

func (repo *scheduleRepository) CreateEntry(_ context.Context, e schedule.Entry) (schedule.Entry, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	e.ID = newID(e.ID)
	repo.db.entries = append(repo.db.entries, e)
	return repo.fill(e), nil
}

func (repo *scheduleRepository) DeleteGroupEntries(_ context.Context, groupID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	kept := repo.db.entries[:0]
	for _, e := range repo.db.entries {
		if e.GroupID != groupID {
			kept = append(kept, e)
		}
	}
	repo.db.entries = kept
	return nil
}

func (repo *scheduleRepository) ListEntries(_ context.Context, filter schedule.Filter) ([]schedule.Entry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	entries := make([]schedule.Entry, 0)
	for _, e := range repo.db.entries {
		if filter.GroupID != "" && e.GroupID != filter.GroupID {
			continue
		}
		if filter.TeacherID != "" && e.TeacherID != filter.TeacherID {
			continue
		}
		entries = append(entries, repo.fill(e))
	}
	schedule.SortEntries(entries)
	return entries, nil
}
