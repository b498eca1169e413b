package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/profile"
)

type onboardOptions struct {
	username   string
	role       string
	group      string
	course     int
	specialty  string
	gpa        float64
	attendance float64
	department string
	subjects   string // comma separated codes
}

// onboard creates one profile for an existing user.
func (cli *commandLine) onboard(opts onboardOptions) error {
	ctx := context.Background()
	usr, err := cli.svc.Users.GetByUsernameOrEmail(ctx, opts.username)
	if err != nil {
		return err
	}

	switch profile.Role(core.CleanString(opts.role, true /* lower */)) {
	case profile.RoleStudent:
		if opts.group == "" {
			return newArgumentError("-group is required to onboard a student")
		}
		grp, err := cli.svc.Academic.GetGroupByCode(ctx, opts.group)
		if err != nil {
			return err
		}
		st, err := cli.svc.Profiles.OnboardStudent(ctx, profile.NewStudent{
			UserID:     usr.ID,
			GroupID:    grp.ID,
			Course:     opts.course,
			Specialty:  opts.specialty,
			GPA:        opts.gpa,
			Attendance: opts.attendance,
		})
		if err != nil {
			return err
		}
		fmt.Printf("onboarded %q as a student of %s (%s)\n", usr.Username, grp.Code, st.ID)

	case profile.RoleTeacher:
		subjectIDs := make([]string, 0)
		for _, code := range strings.Split(opts.subjects, ",") {
			if code = strings.TrimSpace(code); code == "" {
				continue
			}
			subj, err := cli.svc.Academic.GetSubjectByCode(ctx, code)
			if err != nil {
				return err
			}
			subjectIDs = append(subjectIDs, subj.ID)
		}
		t, err := cli.svc.Profiles.OnboardTeacher(ctx, profile.NewTeacher{
			UserID:     usr.ID,
			Department: opts.department,
			SubjectIDs: subjectIDs,
		})
		if err != nil {
			return err
		}
		fmt.Printf("onboarded %q as a teacher of %d subject(s) (%s)\n", usr.Username, len(subjectIDs), t.ID)

	case profile.RoleDirector:
		d, err := cli.svc.Profiles.OnboardDirector(ctx, usr.ID)
		if err != nil {
			return err
		}
		fmt.Printf("onboarded %q as a director (%s)\n", usr.Username, d.ID)

	default:
		return newArgumentError("unknown role %q: expected student, teacher or director", opts.role)
	}
	return nil
}
