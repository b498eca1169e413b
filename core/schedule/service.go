package schedule

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		DeleteGroupEntries(ctx context.Context, groupID string) error
		// ListEntries returns entries ordered by weekday then start time.
		ListEntries(ctx context.Context, filter Filter) ([]Entry, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ne NewEntry) (Entry, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Entry{}, err
	}
	e, err := svc.repo.CreateEntry(ctx, Entry{
		GroupID:   ne.GroupID,
		SubjectID: ne.SubjectID,
		TeacherID: ne.TeacherID,
		Weekday:   ne.Weekday,
		Start:     ne.Start,
		End:       ne.End,
		Location:  ne.Location,
	})
	return e, errors.Wrap(err, "creating schedule entry")
}

// ReplaceForGroup drops the group's timetable and creates the given entries.
// Every entry is validated before anything is deleted.
func (svc *Service) ReplaceForGroup(ctx context.Context, groupID string, entries []NewEntry) ([]Entry, error) {
	for i := range entries {
		entries[i].GroupID = groupID
		if err := entries[i].Validate(svc.validate); err != nil {
			return nil, err
		}
	}
	if err := svc.repo.DeleteGroupEntries(ctx, groupID); err != nil {
		return nil, errors.Wrap(err, "deleting group entries")
	}
	created := make([]Entry, 0, len(entries))
	for _, ne := range entries {
		e, err := svc.Create(ctx, ne)
		if err != nil {
			return nil, err
		}
		created = append(created, e)
	}
	return created, nil
}

func (svc *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	return svc.repo.ListEntries(ctx, filter)
}

func (svc *Service) ForGroup(ctx context.Context, groupID string) ([]Entry, error) {
	return svc.repo.ListEntries(ctx, Filter{GroupID: groupID})
}

func (svc *Service) ForTeacher(ctx context.Context, teacherID string) ([]Entry, error) {
	return svc.repo.ListEntries(ctx, Filter{TeacherID: teacherID})
}

// GroupRef is a distinct group taken from schedule entries.
type GroupRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// DistinctGroups returns the groups entries refer to, ordered by code.
func DistinctGroups(entries []Entry) []GroupRef {
	seen := make(map[string]struct{}, len(entries))
	groups := make([]GroupRef, 0)
	for _, e := range entries {
		if _, ok := seen[e.GroupID]; ok {
			continue
		}
		seen[e.GroupID] = struct{}{}
		groups = append(groups, GroupRef{ID: e.GroupID, Code: e.GroupCode})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Code < groups[j].Code })
	return groups
}

// SortEntries orders entries by weekday then start time.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Weekday != entries[j].Weekday {
			return entries[i].Weekday < entries[j].Weekday
		}
		return entries[i].Start < entries[j].Start
	})
}
