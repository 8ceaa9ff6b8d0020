package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-library-backend/internal/model"
	"go-library-backend/internal/repository/memory"
	"go-library-backend/internal/service"
)

type fakeMigrator struct {
	up     int
	status int
}

func (m *fakeMigrator) Migrate(context.Context) error {
	m.up++
	return nil
}

func (m *fakeMigrator) MigrationStatus(context.Context) error {
	m.status++
	return nil
}

type testEnv struct {
	*env
	store    *memory.Store
	migrator *fakeMigrator
	out      *bytes.Buffer
	closed   int
}

func newTestEnv(stdin string) *testEnv {
	te := &testEnv{
		store:    memory.NewStore(),
		migrator: &fakeMigrator{},
		out:      &bytes.Buffer{},
	}
	te.env = &env{
		stdin:  strings.NewReader(stdin),
		stdout: te.out,
		stderr: &bytes.Buffer{},
		openMembers: func(context.Context) (memberAdmin, func(), error) {
			return service.NewMemberService(te.store.Students(), te.store.Staff()), func() { te.closed++ }, nil
		},
		openMigrator: func(context.Context) (migrator, func(), error) {
			return te.migrator, func() { te.closed++ }, nil
		},
		isTerminal: func() bool { return false },
		readSecret: func() ([]byte, error) { return nil, errors.New("no terminal") },
	}
	return te
}

func (te *testEnv) run(args ...string) error {
	root := newRootCmd(te.env)
	root.SetArgs(args)
	return root.Execute()
}

func TestStudentAddAndDeactivate(t *testing.T) {
	te := newTestEnv("password123\n")

	err := te.run("student", "add",
		"--student-id", "STU-1",
		"--email", "ada@example.com",
		"--first-name", "Ada",
		"--last-name", "Lovelace",
		"--enrollment-date", "2024-09-01",
		"--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, te.out.String(), "created student STU-1")
	assert.Equal(t, 1, te.closed)

	student, err := te.store.Students().FindActiveByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("password123")))

	require.NoError(t, te.run("student", "deactivate", "ADA@example.com"))
	_, err = te.store.Students().FindActiveByEmail(context.Background(), "ada@example.com")
	require.ErrorIs(t, err, model.ErrUserNotFound)

	require.NoError(t, te.run("student", "activate", "ada@example.com"))
	_, err = te.store.Students().FindActiveByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
}

func TestStaffAddDefaultsRole(t *testing.T) {
	te := newTestEnv("password123\n")

	err := te.run("staff", "add",
		"--staff-id", "STF-1",
		"--email", "grace@example.com",
		"--first-name", "Grace",
		"--last-name", "Hopper",
		"--department", "Circulation",
		"--password-stdin")
	require.NoError(t, err)

	member, err := te.store.Staff().FindActiveByEmail(context.Background(), "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, "librarian", member.Role)
	require.NotNil(t, member.Department)
	assert.Equal(t, "Circulation", *member.Department)
	assert.Nil(t, member.Phone)
}

func TestStaffAddRejectsEmailUsedByStudent(t *testing.T) {
	te := newTestEnv("password123\n")
	_, err := service.NewMemberService(te.store.Students(), te.store.Staff()).CreateStudent(context.Background(), model.CreateStudentRequest{
		StudentID: "STU-1", Email: "shared@example.com", Password: "password123",
		FirstName: "A", LastName: "B", EnrollmentDate: "2024-01-01",
	})
	require.NoError(t, err)

	err = te.run("staff", "add",
		"--staff-id", "STF-1",
		"--email", "shared@example.com",
		"--first-name", "Grace",
		"--last-name", "Hopper",
		"--password-stdin")
	require.ErrorContains(t, err, "already registered")
}

func TestPasswordPromptRequiresTerminal(t *testing.T) {
	te := newTestEnv("")

	err := te.run("hash-password")
	require.ErrorContains(t, err, "--password-stdin")
}

func TestPasswordPromptConfirms(t *testing.T) {
	te := newTestEnv("")
	te.isTerminal = func() bool { return true }
	answers := [][]byte{[]byte("password123"), []byte("different")}
	te.readSecret = func() ([]byte, error) {
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}

	err := te.run("hash-password")
	require.EqualError(t, err, "passwords do not match")
}

func TestHashPassword(t *testing.T) {
	te := newTestEnv("s3cret-pass\n")

	require.NoError(t, te.run("hash-password", "--password-stdin"))

	hash := strings.TrimSpace(te.out.String())
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}

func TestMigrate(t *testing.T) {
	te := newTestEnv("")

	require.NoError(t, te.run("migrate", "up"))
	require.NoError(t, te.run("migrate", "status"))
	assert.Equal(t, 1, te.migrator.up)
	assert.Equal(t, 1, te.migrator.status)
	assert.Equal(t, 2, te.closed)
}

func TestSetActiveUnknownEmail(t *testing.T) {
	te := newTestEnv("")

	err := te.run("staff", "deactivate", "ghost@example.com")
	require.ErrorContains(t, err, "No staff with email ghost@example.com")
}
