package cli_test

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/stepattend/internal/attend/app"
	"github.com/aussiebroadwan/stepattend/internal/attend/cli"
	"github.com/aussiebroadwan/stepattend/internal/attend/fakeapi"
	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
)

type harness struct {
	fake *fakeapi.Server
	app  *app.Application
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fake := fakeapi.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	a, err := app.New(context.Background(), app.Config{
		APIURL:         srv.URL,
		SessionBackend: app.BackendMemory,
		LogOutput:      io.Discard,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &harness{fake: fake, app: a}
}

// run executes one command with stdin and returns exit code, stdout and stderr.
func (h *harness) run(stdin string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := cli.New(h.app, strings.NewReader(stdin), &out, &errOut).Run(context.Background(), args)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	code, _, stderr := h.run("")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "Usage: attendctl")

	code, _, stderr = h.run("", "frobnicate")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, `unknown command "frobnicate"`)
}

func TestRun_Login(t *testing.T) {
	t.Parallel()

	t.Run("flags", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.fake.AddUser("alice", "secret1", "Alice Smith", "TEACHER")

		code, stdout, _ := h.run("", "login", "-u", "alice", "-p", "secret1")
		require.Equal(t, 0, code)
		require.Equal(t, "Signed in as Alice Smith (TEACHER)\n", stdout)
		require.True(t, h.app.Session().Authenticated())
	})

	t.Run("prompts for missing values", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.fake.AddUser("alice", "secret1", "Alice Smith", "STUDENT")

		code, stdout, stderr := h.run("alice\nsecret1\n", "login")
		require.Equal(t, 0, code, stderr)
		require.Contains(t, stderr, "Username: ")
		require.Contains(t, stderr, "Password: ")
		require.Contains(t, stdout, "(STUDENT)")
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.fake.AddUser("alice", "secret1", "Alice Smith", "STUDENT")

		code, _, stderr := h.run("", "login", "-u", "alice", "-p", "nope")
		require.Equal(t, 1, code)
		require.Contains(t, stderr, "Error: "+fakeapi.MsgInvalidCredentials)
		require.False(t, h.app.Session().Authenticated())
	})

	t.Run("mfa from totp secret", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.fake.AddUser("carol", "secret1", "Carol Jones", "ADMIN")
		secret := h.fake.EnableMFA("carol")

		code, stdout, stderr := h.run("", "login", "-u", "carol", "-p", "secret1", "-totp-secret", secret)
		require.Equal(t, 0, code, stderr)
		require.Contains(t, stdout, "Carol Jones (ADMIN)")
		require.Equal(t, 2, h.fake.LoginCalls())
	})

	t.Run("mfa code prompt hits eof", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.fake.AddUser("carol", "secret1", "Carol Jones", "ADMIN")
		h.fake.EnableMFA("carol")

		code, _, stderr := h.run("", "login", "-u", "carol", "-p", "secret1")
		require.Equal(t, 1, code)
		require.Contains(t, stderr, "MFA code: ")
		require.False(t, h.app.Login.State().RequiresMFA)
		require.Equal(t, 1, h.fake.LoginCalls())
	})
}

func TestRun_RegisterWhoamiLogout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.app.Registrar.Delay = 0

	code, stdout, stderr := h.run("", "register", "-u", "dave", "-p", "hunter22")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "Registered and signed in as dave (STUDENT)\n", stdout)

	code, stdout, _ = h.run("", "whoami")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "Name:    dave")
	require.Contains(t, stdout, "Role:    STUDENT")
	require.NotContains(t, stdout, "Expires: unknown")

	code, stdout, _ = h.run("", "logout")
	require.Equal(t, 0, code)
	require.Equal(t, "Signed out\n", stdout)

	code, _, stderr = h.run("", "whoami")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, cli.ErrNotSignedIn.Error())
}

func TestRun_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.app.Registrar.Delay = 0
	h.fake.AddUser("dave", "hunter22", "Dave", "STUDENT")

	code, _, stderr := h.run("", "register", "-u", "dave", "-p", "hunter22")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, fakeapi.MsgUsernameTaken)
}

func TestRun_CoursesAndMark(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	teacherID := h.fake.AddUser("tess", "secret1", "Tess Teacher", "TEACHER")
	s1 := h.fake.AddUser("s1", "secret1", "Sam One", "STUDENT")
	s2 := h.fake.AddUser("s2", "secret1", "Sky Two", "STUDENT")
	h.fake.AddCourse(attendsdk.Course{ID: "c1", Code: "MATH101", Name: "Algebra", TeacherID: teacherID}, s1, s2)
	h.fake.AddAttendance(attendsdk.AttendanceRecord{
		ScheduleID: "sch1", CourseID: "c1", StudentID: s2, Status: attendsdk.StatusLate, Notes: "bus",
	})

	code, _, _ := h.run("", "courses")
	require.Equal(t, 1, code)

	code, _, stderr := h.run("", "login", "-u", "tess", "-p", "secret1")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := h.run("", "courses")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "MATH101")
	require.Contains(t, stdout, "Algebra")

	code, _, stderr = h.run("", "mark", "-course", "c1", "-schedule", "sch1", s1+"=present")
	require.Equal(t, 0, code, stderr)

	saved := h.fake.Attendance("sch1")
	require.Len(t, saved, 3)
	byStudent := map[string]attendsdk.AttendanceRecord{}
	for _, rec := range saved[1:] {
		byStudent[rec.StudentID] = rec
	}
	require.Equal(t, attendsdk.StatusPresent, byStudent[s1].Status)
	require.Equal(t, attendsdk.StatusLate, byStudent[s2].Status)
	require.Equal(t, "bus", byStudent[s2].Notes)

	code, stdout, _ = h.run("", "attendance", "-schedule", "sch1")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "PRESENT")

	t.Run("rejects bad marks", func(t *testing.T) {
		code, _, stderr := h.run("", "mark", "-course", "c1", "-schedule", "sch1", s1+"=asleep")
		require.Equal(t, 1, code)
		require.Contains(t, stderr, "bad mark")

		code, _, stderr = h.run("", "mark", "-course", "c1", "-schedule", "sch1", "ghost=PRESENT")
		require.Equal(t, 1, code)
		require.Contains(t, stderr, "not enrolled")

		code, _, _ = h.run("", "mark", "-course", "c1")
		require.Equal(t, 1, code)
	})
}
