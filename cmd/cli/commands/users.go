package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoshkina/baristabot/pkg/db"
)

// ListUsersCmd creates the listUsers command
func ListUsersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listUsers",
		Short: "List active staff members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Database.ListActiveUsers(app.Ctx, "")
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			fmt.Printf("\nFound %d active staff members:\n\n", len(users))
			for _, u := range users {
				line := fmt.Sprintf("  %-20s %s  %s", u.Name, u.StaffID, u.Role)
				if u.Handle != "" {
					line += "  @" + u.Handle
				}
				fmt.Println(line)
			}
			fmt.Println()
			return nil
		},
	}
}

// AddUserCmd creates the addUser command
func AddUserCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addUser <name> <staff_id>",
		Short: "Register a staff member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")
			handle, _ := cmd.Flags().GetString("handle")
			chatID, _ := cmd.Flags().GetInt64("chat-id")

			switch role {
			case db.RoleStaff, db.RoleSupervisor, db.RoleMentor:
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			user := &db.User{
				Name:    args[0],
				StaffID: db.NormalizeStaffID(args[1]),
				ChatID:  chatID,
				Handle:  handle,
				Role:    role,
				Active:  true,
			}
			id, err := app.Database.CreateUser(app.Ctx, user)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Printf("\n✓ User %d created: %s (%s)\n\n", id, user.Name, user.StaffID)
			return nil
		},
	}

	cmd.Flags().String("role", db.RoleStaff, "Role: staff, supervisor or mentor")
	cmd.Flags().String("handle", "", "Messaging-platform handle")
	cmd.Flags().Int64("chat-id", 0, "Messaging-platform chat id")

	return cmd
}

// DeactivateUserCmd creates the deactivateUser command
func DeactivateUserCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivateUser <staff_id>",
		Short: "Deactivate a staff member without deleting their history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID := db.NormalizeStaffID(args[0])
			user, err := app.Database.GetUserByStaffID(app.Ctx, staffID)
			if err != nil {
				return fmt.Errorf("failed to find user %s: %w", staffID, err)
			}
			if err := app.Database.DeactivateUser(app.Ctx, user.ID); err != nil {
				return fmt.Errorf("failed to deactivate %s: %w", staffID, err)
			}
			fmt.Printf("\n✓ %s (%s) deactivated\n\n", user.Name, staffID)
			return nil
		},
	}
}
