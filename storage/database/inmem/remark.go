package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/college/core/remark"
)

type remarkRepository struct {
	db *DB
}

var _ remark.Repository = (*remarkRepository)(nil) // interface compliance check

func NewRemarkRepository(db *DB) *remarkRepository {
	return &remarkRepository{db: db}
}

func (repo *remarkRepository) fill(r remark.Remark) remark.Remark {
	st, _ := repo.db.studentByID(r.StudentID)
	r.StudentName = st.Name
	r.GroupCode = st.GroupCode
	r.AuthorName = repo.db.userName(r.AuthorID)
	r.TeacherName = null.String{}
	if r.TeacherID.Valid {
		if t, ok := repo.db.teacherByID(r.TeacherID.String); ok {
			r.TeacherName = null.StringFrom(t.Name)
		}
	}
	return r
}

func remarkMatch(filter remark.Filter, r remark.Remark) bool {
	if filter.StudentID != "" && r.StudentID != filter.StudentID {
		return false
	}
	byTeacher := filter.InvolvingTeacherID != "" && r.TeacherID.Valid && r.TeacherID.String == filter.InvolvingTeacherID
	byAuthor := filter.InvolvingAuthorID != "" && r.AuthorID == filter.InvolvingAuthorID
	if (filter.InvolvingTeacherID != "" || filter.InvolvingAuthorID != "") && !byTeacher && !byAuthor {
		return false
	}
	switch filter.Status {
	case remark.StatusOpen:
		if r.Resolved {
			return false
		}
	case remark.StatusResolved:
		if !r.Resolved {
			return false
		}
	}
	return filter.Level == "" || r.Level == filter.Level
}

func (repo *remarkRepository) CreateRemark(_ context.Context, r remark.Remark) (remark.Remark, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	r.ID = newID(r.ID)
	repo.db.remarks = append(repo.db.remarks, r)
	return repo.fill(r), nil
}

func (repo *remarkRepository) GetRemark(_ context.Context, id string) (remark.Remark, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, r := range repo.db.remarks {
		if r.ID == id {
			return repo.fill(r), nil
		}
	}
	return remark.Remark{}, remark.ErrNotFound
}

func (repo *remarkRepository) ResolveRemark(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i := range repo.db.remarks {
		if repo.db.remarks[i].ID == id {
			repo.db.remarks[i].Resolved = true
			return nil
		}
	}
	return remark.ErrNotFound
}

func (repo *remarkRepository) ListRemarks(_ context.Context, filter remark.Filter) ([]remark.Remark, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	remarks := make([]remark.Remark, 0)
	for _, r := range repo.db.remarks {
		if remarkMatch(filter, r) {
			remarks = append(remarks, repo.fill(r))
		}
	}
	remarks = newestFirst(remarks, func(r remark.Remark) time.Time { return r.CreatedAt })
	sort.SliceStable(remarks, func(i, j int) bool { return !remarks[i].Resolved && remarks[j].Resolved })
	return limit(remarks, filter.Limit), nil
}

func (repo *remarkRepository) CountRemarks(_ context.Context, filter remark.Filter) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var n int
	for _, r := range repo.db.remarks {
		if remarkMatch(filter, r) {
			n++
		}
	}
	return n, nil
}
