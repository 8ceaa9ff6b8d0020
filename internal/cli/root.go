// Package cli implements lmsctl, the operator tool for schema migrations and for
// provisioning the students and staff who sign in to the API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go-library-backend/internal/config"
	"go-library-backend/internal/database"
	"go-library-backend/internal/model"
	"go-library-backend/internal/repository"
	"go-library-backend/internal/service"
)

type memberAdmin interface {
	CreateStudent(ctx context.Context, req model.CreateStudentRequest) (model.Student, error)
	CreateStaff(ctx context.Context, req model.CreateStaffRequest) (model.Staff, error)
	SetActive(ctx context.Context, userType model.UserType, email string, active bool) error
}

type migrator interface {
	Migrate(ctx context.Context) error
	MigrationStatus(ctx context.Context) error
}

// env carries the command's collaborators so tests can replace the database.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	openMembers  func(ctx context.Context) (memberAdmin, func(), error)
	openMigrator func(ctx context.Context) (migrator, func(), error)
	isTerminal   func() bool
	readSecret   func() ([]byte, error)
}

func Execute() int {
	root := newRootCmd(defaultEnv())
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func defaultEnv() *env {
	fd := int(os.Stdin.Fd())

	return &env{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		openMembers: func(ctx context.Context) (memberAdmin, func(), error) {
			db, err := openDatabase(ctx)
			if err != nil {
				return nil, nil, err
			}
			members := service.NewMemberService(
				repository.NewStudentRepository(db.Pool),
				repository.NewStaffRepository(db.Pool),
			)
			return members, db.Close, nil
		},
		openMigrator: func(ctx context.Context) (migrator, func(), error) {
			db, err := openDatabase(ctx)
			if err != nil {
				return nil, nil, err
			}
			return db, db.Close, nil
		},
		isTerminal: func() bool { return term.IsTerminal(fd) },
		readSecret: func() ([]byte, error) { return term.ReadPassword(fd) },
	}
}

func openDatabase(ctx context.Context) (*database.DB, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	return database.New(ctx, *cfg)
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "lmsctl",
		Short:         "Library backend administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(e.stdin)
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)

	root.AddCommand(
		newMigrateCmd(e),
		newStudentCmd(e),
		newStaffCmd(e),
		newHashPasswordCmd(e),
	)

	return root
}

// readPassword takes the password from the first line of stdin when fromStdin is set,
// otherwise prompts on the terminal with echo disabled.
func (e *env) readPassword(fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(e.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return "", errors.New("password on stdin is empty")
		}
		return password, nil
	}

	if !e.isTerminal() {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}

	fmt.Fprint(e.stderr, "Password: ")
	first, err := e.readSecret()
	fmt.Fprintln(e.stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(e.stderr, "Confirm password: ")
	second, err := e.readSecret()
	fmt.Fprintln(e.stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
