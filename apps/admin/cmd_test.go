package main

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/user"
	"github.com/trezcool/college/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.App) {
	app := testutil.NewApp(t)
	return &commandLine{svc: app.Services, translator: app.Translator}, app
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

// runCLI runs tt and checks its error; it returns the error for further checks.
func runCLI(t *testing.T, cli *commandLine, tt cliTest) error {
	t.Helper()
	args := append([]string{"admin"}, tt.args...)
	err := cli.run(args)
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
	return err
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = nil })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLI(t, cli, tt)
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, app := setup(t)

	usr := app.CreateUser(t, "User", "awe", "awe@test.cd", "mdr", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		pwd := ""
		if ex, ok := tt.extra.(extra); ok {
			pwd = ex.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			if err := runCLI(t, cli, tt); err != nil || len(tt.args) == 0 || tt.args[0] != "resetpassword" {
				return
			}
			refreshedUsr, err := app.Users.GetByID(context.Background(), usr.ID)
			if err != nil {
				t.Fatalf("GetByID() failed, %v", err)
			}
			if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
				t.Error("failed to update new password")
			}
			if err = refreshedUsr.CheckPassword(pwd); err != nil {
				t.Errorf("CheckPassword(%q) error = %v", pwd, err)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, app := setup(t)

	app.CreateUser(t, "Taken", "taken", "taken@test.cd", "", true)

	tests := []struct {
		cliTest
		pwd       string
		wantField string
	}{
		{cliTest: cliTest{name: "no args", args: []string{"adduser"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "no name", args: []string{"adduser", "-username", "bob"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "no password", args: []string{"adduser", "-username", "bob", "-name", "Bob"}, wantErr: errHelp}},
		{
			cliTest:   cliTest{name: "weak password", args: []string{"adduser", "-username", "bob", "-name", "Bob"}},
			pwd:       "12345678",
			wantField: "password",
		},
		{
			cliTest:   cliTest{name: "username taken", args: []string{"adduser", "-username", "taken", "-name", "Bob"}},
			pwd:       "Kampus#Demo2024",
			wantField: "username",
		},
		{
			cliTest: cliTest{name: "created", args: []string{"adduser", "-username", "Bob", "-name", "Bob Marley", "-email", "bob@test.cd"}},
			pwd:     "Kampus#Demo2024",
		},
	}
	for _, tt := range tests {
		mockPassword(tt.pwd)

		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"admin"}, tt.args...)
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantField != "":
				if _, ok := core.FieldErrors(err, app.Translator)[tt.wantField]; !ok {
					t.Errorf("cli.run() error = %v, want a %q field error", err, tt.wantField)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			default:
				usr, err := app.Users.GetByUsernameOrEmail(context.Background(), "bob")
				if err != nil {
					t.Fatalf("GetByUsernameOrEmail() failed, %v", err)
				}
				if !usr.IsActive || usr.Email != "bob@test.cd" {
					t.Errorf("created user = %+v", usr)
				}
			}
		})
	}
}

func Test_commandLine_onboard(t *testing.T) {
	cli, app := setup(t)
	ctx := context.Background()

	grp := app.CreateGroup(t, "PO-1")
	subj := app.CreateSubject(t, "PROG", "Programming")
	stud := app.CreateUser(t, "Student", "stud", "", "", true)
	tchr := app.CreateUser(t, "Teacher", "tchr", "", "", true)
	dir := app.CreateUser(t, "Director", "dir", "", "", true)

	tests := []cliTest{
		{name: "no args", args: []string{"onboard"}, wantErr: errHelp},
		{name: "no role", args: []string{"onboard", "-username", "stud"}, wantErr: errHelp},
		{name: "user not found", args: []string{"onboard", "-username", "lol", "-role", "director"}, wantErr: user.ErrNotFound},
		{name: "unknown role", args: []string{"onboard", "-username", "stud", "-role", "janitor"},
			wantErrStr: `unknown role "janitor": expected student, teacher or director`},
		{name: "student without group", args: []string{"onboard", "-username", "stud", "-role", "student"},
			wantErrStr: "-group is required to onboard a student"},
		{name: "student", args: []string{"onboard", "-username", "stud", "-role", "student", "-group", "po-1", "-gpa", "4.2", "-attendance", "120"}},
		{name: "teacher", args: []string{"onboard", "-username", "tchr", "-role", "Teacher", "-subjects", "PROG, "}},
		{name: "director", args: []string{"onboard", "-username", "dir", "-role", "director"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLI(t, cli, tt)
		})
	}

	st, err := app.Profiles.GetStudentByUser(ctx, stud.ID)
	if err != nil {
		t.Fatalf("GetStudentByUser() failed, %v", err)
	}
	if st.GroupID != grp.ID || st.GPA != 4.2 || st.Attendance != profile.MaxAttendance {
		t.Errorf("student = %+v", st)
	}
	teacher, err := app.Profiles.GetTeacherByUser(ctx, tchr.ID)
	if err != nil {
		t.Fatalf("GetTeacherByUser() failed, %v", err)
	}
	if !teacher.Teaches(subj.ID) {
		t.Errorf("teacher subjects = %v, want %s", teacher.SubjectIDs, subj.ID)
	}
	if role := app.Viewer(t, dir).Role(); role != profile.RoleDirector {
		t.Errorf("director role = %s", role)
	}

	t.Run("profile exists", func(t *testing.T) {
		err := cli.run([]string{"admin", "onboard", "-username", "dir", "-role", "director"})
		if _, ok := core.FieldErrors(err, app.Translator)["user_id"]; !ok {
			t.Errorf("cli.run() error = %v, want a user_id field error", err)
		}
	})
}

func Test_commandLine_notify(t *testing.T) {
	cli, app := setup(t)
	usr := app.CreateUser(t, "User", "awe", "awe@test.cd", "", true)

	tests := []cliTest{
		{name: "no args", args: []string{"notify"}, wantErr: errHelp},
		{name: "no title", args: []string{"notify", "-username", "awe"}, wantErr: errHelp},
		{name: "user not found", args: []string{"notify", "-username", "lol", "-title", "Hi"}, wantErr: user.ErrNotFound},
		{name: "notified", args: []string{"notify", "-username", "awe@test.cd", "-title", "Hi", "-message", "Hello", "-link", "/news"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLI(t, cli, tt)
		})
	}

	count, err := app.Notifications.UnreadCount(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("UnreadCount() failed, %v", err)
	}
	if count != 1 {
		t.Errorf("UnreadCount() = %d, want 1", count)
	}
}

func Test_commandLine_addNews(t *testing.T) {
	cli, app := setup(t)

	coverPath := filepath.Join(t.TempDir(), "cover.png")
	if err := imaging.Save(imaging.New(64, 32, color.White), coverPath); err != nil {
		t.Fatalf("imaging.Save() failed, %v", err)
	}
	textPath := filepath.Join(t.TempDir(), "cover.txt")
	if err := os.WriteFile(textPath, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("os.WriteFile() failed, %v", err)
	}

	tests := []struct {
		cliTest
		wantField string
	}{
		{cliTest: cliTest{name: "no args", args: []string{"addnews"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "no cover", args: []string{"addnews", "-title", "T", "-text", "X"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "invalid cover", args: []string{"addnews", "-title", "T", "-text", "X", "-cover", textPath}}, wantField: "cover"},
		{cliTest: cliTest{name: "published", args: []string{"addnews", "-title", "Open day", "-text", "Come visit", "-tag", "events", "-cover", coverPath}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantField != "":
				if _, ok := core.FieldErrors(err, app.Translator)[tt.wantField]; !ok {
					t.Errorf("cli.run() error = %v, want a %q field error", err, tt.wantField)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}

	recent, err := app.News.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() failed, %v", err)
	}
	if len(recent) != 1 || recent[0].Title != "Open day" || recent[0].CoverURL == "" {
		t.Errorf("Recent() = %+v", recent)
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli, app := setup(t)
	ctx := context.Background()

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	dir, err := app.Users.Authenticate(ctx, "director", defaultSeedPassword)
	if err != nil {
		t.Fatalf("Authenticate() failed, %v", err)
	}
	viewer := app.Viewer(t, dir)
	if viewer.Role() != profile.RoleDirector || viewer.Profiles.Teacher == nil {
		t.Errorf("director profiles = %+v", viewer.Profiles)
	}

	d, err := app.Dashboards.Build(ctx, viewer)
	if err != nil {
		t.Fatalf("Build() failed, %v", err)
	}
	if d.Director.StudentsCount != len(seedStudents) || d.Director.TeachersCount != len(seedTeachers)+1 {
		t.Errorf("director dashboard = %+v", d.Director)
	}
	if d.Director.TeachingMode == nil || d.Director.TeachingMode.NextLesson == nil {
		t.Errorf("director teaching mode = %+v", d.Director.TeachingMode)
	}

	stud, err := app.Users.GetByUsernameOrEmail(ctx, "asanov")
	if err != nil {
		t.Fatalf("GetByUsernameOrEmail() failed, %v", err)
	}
	sd, err := app.Dashboards.Build(ctx, app.Viewer(t, stud))
	if err != nil {
		t.Fatalf("Build() failed, %v", err)
	}
	if sd.Student.Place != 1 || sd.Student.GroupTotal != 3 || sd.Student.NextLesson == nil || len(sd.Student.News) != 2 {
		t.Errorf("student dashboard = %+v", sd.Student)
	}

	t.Run("twice", func(t *testing.T) {
		if err := cli.run([]string{"admin", "seed"}); err == nil {
			t.Error("cli.run() error = nil, want a uniqueness error")
		}
	})
}
