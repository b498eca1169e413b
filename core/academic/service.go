package academic

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
)

var (
	// errors
	ErrGroupNotFound   = core.NewNotFoundError("group")
	ErrSubjectNotFound = core.NewNotFoundError("subject")
	ErrCodeExists      = errors.New("this code is already in use")
)

type (
	Repository interface {
		// CreateGroup returns ErrCodeExists if the code is taken.
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		GetGroup(ctx context.Context, id string) (Group, error)
		GetGroupByCode(ctx context.Context, code string) (Group, error)
		// ListGroups returns all groups ordered by code.
		ListGroups(ctx context.Context) ([]Group, error)

		// CreateSubject returns ErrCodeExists if the code is taken.
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		GetSubjectByCode(ctx context.Context, code string) (Subject, error)
		// ListSubjects returns all subjects ordered by name.
		ListSubjects(ctx context.Context) ([]Subject, error)
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

func normalizeCode(code string) string {
	return strings.ToUpper(core.CleanString(code))
}

func codeTaken(err error) error {
	if errors.Cause(err) == ErrCodeExists {
		return core.NewValidationError(ErrCodeExists, core.FieldError{Field: "code", Error: ErrCodeExists.Error()})
	}
	return err
}

func (svc *Service) CreateGroup(ctx context.Context, ng NewGroup) (Group, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return Group{}, err
	}
	grp, err := svc.repo.CreateGroup(ctx, Group{Name: ng.Name, Code: ng.Code, CreatedAt: time.Now().UTC()})
	if err != nil {
		return Group{}, codeTaken(err)
	}
	return grp, nil
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Subject{}, err
	}
	subj, err := svc.repo.CreateSubject(ctx, Subject{Name: ns.Name, Code: ns.Code, CreatedAt: time.Now().UTC()})
	if err != nil {
		return Subject{}, codeTaken(err)
	}
	return subj, nil
}

func (svc *Service) GetGroup(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroup(ctx, id)
}

func (svc *Service) GetGroupByCode(ctx context.Context, code string) (Group, error) {
	return svc.repo.GetGroupByCode(ctx, normalizeCode(code))
}

func (svc *Service) ListGroups(ctx context.Context) ([]Group, error) {
	return svc.repo.ListGroups(ctx)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) GetSubjectByCode(ctx context.Context, code string) (Subject, error) {
	return svc.repo.GetSubjectByCode(ctx, normalizeCode(code))
}

func (svc *Service) ListSubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.ListSubjects(ctx)
}

// FilterSubjects keeps the subjects whose ID is in ids, preserving order.
func FilterSubjects(subjects []Subject, ids []string) []Subject {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	filtered := make([]Subject, 0, len(ids))
	for _, subj := range subjects {
		if _, ok := keep[subj.ID]; ok {
			filtered = append(filtered, subj)
		}
	}
	return filtered
}
