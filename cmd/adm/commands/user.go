package commands

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"

	"ireporter/internal/observability"
	"ireporter/internal/services"
	contextutils "ireporter/internal/utils"

	"github.com/spf13/cobra"
)

// UserCommands returns the user management commands
func UserCommands(userService *services.UserService, logger *observability.Logger, databaseURL string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long: `User management commands for the ireporter backend.

Available commands:
  list           - List all users
  create         - Create a new user
  reset-password - Reset password for a specific user`,
	}

	userCmd.AddCommand(listCmd(userService, logger, databaseURL))
	userCmd.AddCommand(createCmd(userService, logger))
	userCmd.AddCommand(resetPasswordCmd(userService, logger))

	return userCmd
}

func listCmd(userService *services.UserService, logger *observability.Logger, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Long:  `List all users in the database with their basic information.`,
		RunE:  runListUsers(userService, logger, databaseURL),
	}
}

func createCmd(userService *services.UserService, logger *observability.Logger) *cobra.Command {
	var moderator bool
	var email string

	cmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create a new user",
		Long:  `Create a new user account. The password is prompted for interactively.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runCreateUser(userService, logger, &moderator, &email),
	}

	cmd.Flags().BoolVar(&moderator, "moderator", false, "Grant the new user moderation rights")
	cmd.Flags().StringVar(&email, "email", "", "Email address for status change notifications")

	return cmd
}

func resetPasswordCmd(userService *services.UserService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [username]",
		Short: "Reset password for a user",
		Long:  `Reset the password for a specific user. If username is not provided, you will be prompted for it.`,
		RunE:  runResetPassword(userService, logger),
	}
}

func runListUsers(userService *services.UserService, logger *observability.Logger, databaseURL string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		logger.Info(ctx, "Listing all users", map[string]interface{}{
			"database_url": maskDatabaseURL(databaseURL),
		})

		users, err := userService.ListUsers(ctx)
		if err != nil {
			return contextutils.WrapError(err, "failed to list users")
		}

		if len(users) == 0 {
			fmt.Println("No users found")
			return nil
		}

		fmt.Printf("%-5s %-20s %-30s %-10s %-10s\n", "ID", "Username", "Email", "Moderator", "Created")
		fmt.Println(strings.Repeat("-", 80))

		for _, user := range users {
			email := "N/A"
			if user.Email.Valid {
				email = user.Email.String
			}
			moderator := "No"
			if user.IsModerator {
				moderator = "Yes"
			}

			fmt.Printf("%-5d %-20s %-30s %-10s %-10s\n",
				user.ID,
				user.Username,
				email,
				moderator,
				user.CreatedAt.Format("2006-01-02"),
			)
		}

		return nil
	}
}

func runCreateUser(userService *services.UserService, logger *observability.Logger, moderator *bool, email *string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		username := args[0]

		password, err := promptPassword()
		if err != nil {
			return err
		}

		user, err := userService.CreateUser(ctx, username, *email, password, *moderator)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to create user %q", username)
		}

		logger.Info(ctx, "User created via admin CLI", map[string]interface{}{
			"user_id":      user.ID,
			"is_moderator": user.IsModerator,
		})
		fmt.Printf("Created user %q (ID: %d)\n", user.Username, user.ID)
		return nil
	}
}

func runResetPassword(userService *services.UserService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		var username string
		if len(args) > 0 {
			username = args[0]
		} else {
			fmt.Print("Enter username: ")
			if _, err := fmt.Scanln(&username); err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read username: %v", err)
			}
		}
		if username == "" {
			return contextutils.NewValidationError("username", "must not be empty")
		}

		newPassword, err := promptPassword()
		if err != nil {
			return err
		}

		user, err := userService.GetUserByUsername(ctx, username)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to get user %q", username)
		}

		if err := userService.UpdateUserPassword(ctx, user.ID, newPassword); err != nil {
			return contextutils.WrapErrorf(err, "failed to update password for user %q", username)
		}

		fmt.Printf("Password successfully reset for user %q (ID: %d)\n", username, user.ID)
		logger.Info(ctx, "Password reset successful", map[string]interface{}{"user_id": user.ID})
		return nil
	}
}

// promptPassword reads and confirms a password without echoing it.
func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read password: %v", err)
	}
	fmt.Println()
	password := string(passwordBytes)
	if password == "" {
		return "", contextutils.NewValidationError("password", "must not be empty")
	}

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read password confirmation: %v", err)
	}
	fmt.Println()

	if password != string(confirmBytes) {
		return "", contextutils.NewValidationError("password", "passwords do not match")
	}
	return password, nil
}
