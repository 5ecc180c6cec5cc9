// Package cli implements the attendctl subcommands on top of an
// app.Application. Results go to stdout; logs go wherever the application
// logger points.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/aussiebroadwan/stepattend/internal/attend/app"
	"github.com/aussiebroadwan/stepattend/internal/attend/roster"
	"github.com/aussiebroadwan/stepattend/internal/attend/session"
	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
)

const usage = `Usage: attendctl <command> [flags]

Commands:
  login       sign in (prompts for an MFA code when required)
  register    create an account and sign into it
  logout      clear the stored session
  whoami      show the stored session
  courses     list courses for the current role
  attendance  list attendance for a schedule
  mark        mark attendance: mark -course ID -schedule ID student=STATUS...
`

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = errors.New("not signed in")

// CLI runs one command per Run call.
type CLI struct {
	app    *app.Application
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	// Now is the clock used for TOTP codes and token expiry. Defaults to time.Now.
	Now func() time.Time
}

// New creates a CLI reading prompts from in.
func New(application *app.Application, in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{
		app:    application,
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		Now:    time.Now,
	}
}

// Run executes args and returns the process exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.errOut, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "login":
		err = c.login(ctx, args[1:])
	case "register":
		err = c.register(ctx, args[1:])
	case "logout":
		c.app.Login.Logout()
		fmt.Fprintln(c.out, "Signed out")
	case "whoami":
		err = c.whoami()
	case "courses":
		err = c.courses(ctx)
	case "attendance":
		err = c.attendance(ctx, args[1:])
	case "mark":
		err = c.mark(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
	default:
		fmt.Fprintf(c.errOut, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(c.errOut, "Error:", err)
		return 1
	}
	return 0
}

func (c *CLI) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *CLI) login(ctx context.Context, args []string) error {
	fs := c.flagSet("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	otpCode := fs.String("otp", "", "one-time code, used when the account has MFA enabled")
	totpSecret := fs.String("totp-secret", "", "base32 TOTP secret to derive the one-time code from")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.promptMissing(username, "Username: "); err != nil {
		return err
	}
	if err := c.promptMissing(password, "Password: "); err != nil {
		return err
	}

	st := c.app.Login.Login(ctx, *username, *password)
	if st.RequiresMFA {
		code, err := c.mfaCode(*otpCode, *totpSecret)
		if err != nil {
			c.app.Login.CancelMFA()
			return err
		}
		st = c.app.Login.VerifyMFA(ctx, code)
	}

	if !st.LoginSuccess {
		return errors.New(st.ErrorMessage)
	}

	sess := c.app.Session()
	fmt.Fprintf(c.out, "Signed in as %s (%s)\n", displayName(sess), sess.Role())
	return nil
}

func (c *CLI) mfaCode(code, secret string) (string, error) {
	switch {
	case code != "":
		return code, nil
	case secret != "":
		generated, err := totp.GenerateCode(secret, c.Now())
		if err != nil {
			return "", fmt.Errorf("generate one-time code: %w", err)
		}
		return generated, nil
	}

	if err := c.promptMissing(&code, "MFA code: "); err != nil {
		return "", err
	}
	return code, nil
}

func (c *CLI) register(ctx context.Context, args []string) error {
	fs := c.flagSet("register")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.promptMissing(username, "Username: "); err != nil {
		return err
	}
	if err := c.promptMissing(password, "Password: "); err != nil {
		return err
	}

	st := c.app.Registrar.RegisterAndLogin(ctx, *username, *password)
	if !st.RegisterSuccess {
		return errors.New(st.ErrorMessage)
	}

	sess := c.app.Session()
	fmt.Fprintf(c.out, "Registered and signed in as %s (%s)\n", displayName(sess), sess.Role())
	return nil
}

func (c *CLI) whoami() error {
	sess := c.app.Session()
	if !sess.Authenticated() {
		return ErrNotSignedIn
	}

	fmt.Fprintf(c.out, "Name:    %s\n", displayName(sess))
	fmt.Fprintf(c.out, "Role:    %s\n", sess.Role())

	claims, err := attendsdk.PeekClaims(sess.Token)
	switch {
	case err != nil || claims.ExpiresAt().IsZero():
		fmt.Fprintln(c.out, "Expires: unknown")
	case claims.Expired(c.Now()):
		fmt.Fprintf(c.out, "Expires: %s (expired)\n", claims.ExpiresAt().Format(time.RFC3339))
	default:
		fmt.Fprintf(c.out, "Expires: %s\n", claims.ExpiresAt().Format(time.RFC3339))
	}
	return nil
}

func (c *CLI) courses(ctx context.Context) error {
	sess := c.app.Session()
	if !sess.Authenticated() {
		return ErrNotSignedIn
	}

	var (
		courses []attendsdk.Course
		err     error
	)
	switch sess.Role() {
	case session.RoleAdmin:
		courses, err = c.app.Client.ListAllCourses(ctx)
	case session.RoleTeacher:
		courses, err = c.app.Client.ListTeacherCourses(ctx)
	default:
		courses, err = c.app.Client.ListEnrolledCourses(ctx)
	}
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME")
	for _, course := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", course.ID, course.Code, course.Name)
	}
	return tw.Flush()
}

func (c *CLI) attendance(ctx context.Context, args []string) error {
	fs := c.flagSet("attendance")
	scheduleID := fs.String("schedule", "", "schedule id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scheduleID == "" {
		return errors.New("-schedule is required")
	}
	if !c.app.Session().Authenticated() {
		return ErrNotSignedIn
	}

	records, err := c.app.Client.ListScheduleAttendance(ctx, *scheduleID)
	if err != nil {
		return fmt.Errorf("list attendance: %w", err)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STUDENT\tNAME\tSTATUS\tNOTES")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.StudentID, rec.FullName, rec.Status, rec.Notes)
	}
	return tw.Flush()
}

func (c *CLI) mark(ctx context.Context, args []string) error {
	fs := c.flagSet("mark")
	courseID := fs.String("course", "", "course id")
	scheduleID := fs.String("schedule", "", "schedule id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *courseID == "" || *scheduleID == "" {
		return errors.New("-course and -schedule are required")
	}
	if fs.NArg() == 0 {
		return errors.New("nothing to mark: pass student=STATUS arguments")
	}
	if !c.app.Session().Authenticated() {
		return ErrNotSignedIn
	}

	students, err := c.app.Client.CourseStudents(ctx, *courseID)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	records, err := c.app.Client.ListScheduleAttendance(ctx, *scheduleID)
	if err != nil {
		return fmt.Errorf("load attendance: %w", err)
	}

	entries := roster.Merge(students, records)
	for _, arg := range fs.Args() {
		studentID, status, ok := strings.Cut(arg, "=")
		status = strings.ToUpper(status)
		if !ok || studentID == "" || !roster.ValidStatus(status) {
			return fmt.Errorf("bad mark %q: want student=PRESENT|ABSENT|LATE|EXCUSED", arg)
		}
		if !roster.Mark(entries, studentID, status) {
			return fmt.Errorf("student %q is not enrolled in %s", studentID, *courseID)
		}
	}

	req := roster.BatchRequest(*scheduleID, entries)
	if err := c.app.Client.MarkBatchAttendance(ctx, *courseID, req); err != nil {
		return fmt.Errorf("save attendance: %w", err)
	}

	fmt.Fprintf(c.out, "Saved %d attendance records\n", len(req.AttendanceRecords))
	return nil
}

// promptMissing asks for a value on stdin when *dst is empty.
func (c *CLI) promptMissing(dst *string, prompt string) error {
	if *dst != "" {
		return nil
	}
	fmt.Fprint(c.errOut, prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	*dst = strings.TrimRight(line, "\r\n")
	return nil
}

func displayName(s session.Session) string {
	if s.DisplayName == "" {
		return "(no name)"
	}
	return s.DisplayName
}
