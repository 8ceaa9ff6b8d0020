package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go-library-backend/internal/model"
	"go-library-backend/internal/service"
)

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func today() string {
	return time.Now().UTC().Format(time.DateOnly)
}

func newStudentCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage student accounts",
	}

	var (
		req           model.CreateStudentRequest
		phone         string
		address       string
		passwordStdin bool
	)

	add := &cobra.Command{
		Use:   "add",
		Short: "Create an active student account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := e.readPassword(passwordStdin)
			if err != nil {
				return err
			}
			req.Password = password
			req.Phone = optional(phone)
			req.Address = optional(address)

			members, closeFn, err := e.openMembers(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			student, err := members.CreateStudent(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created student %s (id %d, %s)\n", student.StudentID, student.ID, student.Email)
			return nil
		},
	}
	add.Flags().StringVar(&req.StudentID, "student-id", "", "external student identifier")
	add.Flags().StringVar(&req.Email, "email", "", "login email")
	add.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	add.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	add.Flags().StringVar(&req.EnrollmentDate, "enrollment-date", today(), "enrollment date (YYYY-MM-DD)")
	add.Flags().StringVar(&phone, "phone", "", "phone number")
	add.Flags().StringVar(&address, "address", "", "postal address")
	add.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	for _, name := range []string{"student-id", "email", "first-name", "last-name"} {
		_ = add.MarkFlagRequired(name)
	}

	cmd.AddCommand(add, newSetActiveCmd(e, model.UserTypeStudent, true), newSetActiveCmd(e, model.UserTypeStudent, false))
	return cmd
}

func newStaffCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}

	var (
		req           model.CreateStaffRequest
		phone         string
		address       string
		department    string
		passwordStdin bool
	)

	add := &cobra.Command{
		Use:   "add",
		Short: "Create an active staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := e.readPassword(passwordStdin)
			if err != nil {
				return err
			}
			req.Password = password
			req.Phone = optional(phone)
			req.Address = optional(address)
			req.Department = optional(department)

			members, closeFn, err := e.openMembers(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			member, err := members.CreateStaff(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created staff %s (id %d, %s, %s)\n", member.StaffID, member.ID, member.Email, member.Role)
			return nil
		},
	}
	add.Flags().StringVar(&req.StaffID, "staff-id", "", "external staff identifier")
	add.Flags().StringVar(&req.Email, "email", "", "login email")
	add.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	add.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	add.Flags().StringVar(&req.Role, "role", "librarian", "role, e.g. librarian, admin, assistant")
	add.Flags().StringVar(&req.HiredDate, "hired-date", today(), "hire date (YYYY-MM-DD)")
	add.Flags().StringVar(&department, "department", "", "department")
	add.Flags().StringVar(&phone, "phone", "", "phone number")
	add.Flags().StringVar(&address, "address", "", "postal address")
	add.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	for _, name := range []string{"staff-id", "email", "first-name", "last-name"} {
		_ = add.MarkFlagRequired(name)
	}

	cmd.AddCommand(add, newSetActiveCmd(e, model.UserTypeStaff, true), newSetActiveCmd(e, model.UserTypeStaff, false))
	return cmd
}

func newSetActiveCmd(e *env, userType model.UserType, active bool) *cobra.Command {
	use, verb := "activate", "activated"
	if !active {
		use, verb = "deactivate", "deactivated"
	}

	return &cobra.Command{
		Use:   use + " <email>",
		Short: fmt.Sprintf("Mark a %s account as %s", userType, verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, closeFn, err := e.openMembers(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := members.SetActive(cmd.Context(), userType, args[0], active); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", userType, strings.ToLower(strings.TrimSpace(args[0])), verb)
			return nil
		},
	}
}

func newHashPasswordCmd(e *env) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := e.readPassword(passwordStdin)
			if err != nil {
				return err
			}

			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	return cmd
}
