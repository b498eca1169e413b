package main

import (
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/college/apps/shared"
	"github.com/trezcool/college/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// ArgumentError reports an invalid command line argument.
type ArgumentError struct {
	msg string
}

func newArgumentError(format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{msg: fmt.Sprintf(format, args...)}
}

func (err *ArgumentError) Error() string {
	return err.msg
}

type commandLine struct {
	db         *sqlx.DB
	svc        *shared.Services
	translator ut.Translator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo, reset, version...) over the embedded migrations")
	fmt.Println("  adduser -username USERNAME -name NAME [-email EMAIL] - create a user")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  onboard -username USERNAME|EMAIL -role student|teacher|director [options] - create a user's profile")
	fmt.Println("  seed [-password PASSWORD] - load demo data")
	fmt.Println("  notify -username USERNAME|EMAIL -title TITLE [-message MESSAGE] [-type TYPE] [-link LINK] - notify a user")
	fmt.Println("  addnews -title TITLE -text TEXT -cover FILE [-tag TAG] [-broadcast] - publish news")
}

// describe expands validation errors into their field messages.
func (cli *commandLine) describe(err error) string {
	flds := core.FieldErrors(err, cli.translator)
	if len(flds) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(flds))
	for fld, msg := range flds {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fld, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		return cli.runAddUser(args[2:])
	case "resetpassword":
		return cli.runResetPassword(args[2:])
	case "onboard":
		return cli.runOnboard(args[2:])
	case "seed":
		return cli.runSeed(args[2:])
	case "notify":
		return cli.runNotify(args[2:])
	case "addnews":
		return cli.runAddNews(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) runAddUser(args []string) error {
	cmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	uname := cmd.String("username", "", "The user's username. The password will be prompted next.")
	name := cmd.String("name", "", "The user's full name.")
	email := cmd.String("email", "", "The user's email (optional).")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *uname == "" || *name == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := promptPassword("Enter password:")
	if err != nil {
		return err
	}
	if pwd == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.addUser(*name, *uname, *email, pwd)
}

func (cli *commandLine) runResetPassword(args []string) error {
	cmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	uname := cmd.String("username", "", "The user's username or email. The password will be prompted next.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *uname == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := promptPassword("Enter password:")
	if err != nil {
		return err
	}
	if pwd == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.resetPassword(*uname, pwd)
}

func (cli *commandLine) runOnboard(args []string) error {
	cmd := flag.NewFlagSet("onboard", flag.ExitOnError)
	opts := onboardOptions{}
	cmd.StringVar(&opts.username, "username", "", "The user's username or email.")
	cmd.StringVar(&opts.role, "role", "", "The profile to create: student, teacher or director.")
	cmd.StringVar(&opts.group, "group", "", "student: the study group code.")
	cmd.IntVar(&opts.course, "course", 1, "student: the course number.")
	cmd.StringVar(&opts.specialty, "specialty", "", "student: the specialty.")
	cmd.Float64Var(&opts.gpa, "gpa", 0, "student: the GPA (0-5).")
	cmd.Float64Var(&opts.attendance, "attendance", 0, "student: the attendance percent (0-100).")
	cmd.StringVar(&opts.department, "department", "", "teacher: the department.")
	cmd.StringVar(&opts.subjects, "subjects", "", "teacher: comma separated subject codes.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if opts.username == "" || opts.role == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.onboard(opts)
}

func (cli *commandLine) runSeed(args []string) error {
	cmd := flag.NewFlagSet("seed", flag.ExitOnError)
	pwd := cmd.String("password", defaultSeedPassword, "The password of every seeded user.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	return cli.seed(*pwd)
}

func (cli *commandLine) runNotify(args []string) error {
	cmd := flag.NewFlagSet("notify", flag.ExitOnError)
	opts := notifyOptions{}
	cmd.StringVar(&opts.username, "username", "", "The recipient's username or email.")
	cmd.StringVar(&opts.title, "title", "", "The notification title.")
	cmd.StringVar(&opts.message, "message", "", "The notification message.")
	cmd.StringVar(&opts.kind, "type", "system", "The notification type: system, grade, homework, remark or news.")
	cmd.StringVar(&opts.link, "link", "", "An optional link.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if opts.username == "" || opts.title == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.notify(opts)
}

func (cli *commandLine) runAddNews(args []string) error {
	cmd := flag.NewFlagSet("addnews", flag.ExitOnError)
	opts := newsOptions{}
	cmd.StringVar(&opts.title, "title", "", "The news title.")
	cmd.StringVar(&opts.text, "text", "", "The news text.")
	cmd.StringVar(&opts.tag, "tag", "", "An optional tag.")
	cmd.StringVar(&opts.cover, "cover", "", "Path to the cover image.")
	cmd.BoolVar(&opts.broadcast, "broadcast", false, "Notify every active user.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if opts.title == "" || opts.text == "" || opts.cover == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.addNews(opts)
}
