package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
	"github.com/dataloft-systems/dataloft-backend/internal/repository"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User management commands",
	Long:  "Create and seed DataLoft dashboard users",
}

var (
	createEmail      string
	createPassword   string
	createRole       string
	createFullName   string
	createDepartment string
	createPhone      string

	seedExtra int
)

var usersCreateCmd = &cobra.Command{
	Use:   "create [username]",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.ValidRole(createRole) {
			return fmt.Errorf("invalid role %q: must be admin, manager or viewer", createRole)
		}
		if createPassword == "" {
			return errors.New("--password is required")
		}

		repo, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}

		user, err := createUser(cmd.Context(), repo, seedUser{
			Username:   args[0],
			Email:      createEmail,
			Password:   createPassword,
			Role:       models.Role(createRole),
			FullName:   createFullName,
			Department: createDepartment,
			Phone:      createPhone,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created user %q with role %q (id %s)\n", user.Username, user.Role, user.ID)
		return nil
	},
}

// seedUsers are the fixed development accounts.
var seedUsers = []seedUser{
	{
		Username:   "admin",
		Email:      "admin@test.com",
		Password:   "admin123",
		Role:       models.RoleAdmin,
		FullName:   "Admin User",
		Department: "IT",
		Phone:      "010-1234-5678",
	},
	{
		Username:   "manager",
		Email:      "manager@test.com",
		Password:   "manager123",
		Role:       models.RoleManager,
		FullName:   "Manager User",
		Department: "Management",
		Phone:      "010-2345-6789",
	},
	{
		Username:   "viewer",
		Email:      "viewer@test.com",
		Password:   "viewer123",
		Role:       models.RoleViewer,
		FullName:   "Viewer User",
		Department: "General",
		Phone:      "010-3456-7890",
	},
}

var usersSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create development test users",
	Long: `Create the fixed development accounts (admin, manager, viewer) plus an
optional number of randomly generated viewer accounts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("Creating test users...")
		for _, su := range seedUsers {
			user, err := createUser(cmd.Context(), repo, su)
			if errors.Is(err, repository.ErrUserExists) {
				fmt.Printf("User %q already exists. Skipping.\n", su.Username)
				continue
			}
			if err != nil {
				return err
			}
			fmt.Printf("Created user %q with role %q\n", user.Username, user.Role)
		}

		for i := 0; i < seedExtra; i++ {
			su := seedUser{
				Username:   gofakeit.Username(),
				Email:      gofakeit.Email(),
				Password:   gofakeit.Password(true, true, true, true, false, 16),
				Role:       models.RoleViewer,
				FullName:   gofakeit.Name(),
				Department: gofakeit.JobDescriptor(),
				Phone:      gofakeit.Phone(),
			}
			user, err := createUser(cmd.Context(), repo, su)
			if errors.Is(err, repository.ErrUserExists) {
				continue
			}
			if err != nil {
				return err
			}
			fmt.Printf("Created random user %q\n", user.Username)
		}

		fmt.Println("\nYou can now login with:")
		fmt.Println("  - admin / admin123")
		fmt.Println("  - manager / manager123")
		fmt.Println("  - viewer / viewer123")
		return nil
	},
}

type seedUser struct {
	Username   string
	Email      string
	Password   string
	Role       models.Role
	FullName   string
	Department string
	Phone      string
}

func openRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.Database.Type != "postgres" {
		return nil, errors.New("dashctl requires database.type=postgres; in-memory state has nowhere to live")
	}
	return repository.NewPostgresRepository(ctx, cfg.Database.Postgres.ConnString())
}

func createUser(ctx context.Context, repo repository.Repository, su seedUser) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           id.String(),
		Username:     su.Username,
		Email:        su.Email,
		PasswordHash: string(hash),
		Role:         su.Role,
		FullName:     su.FullName,
		Department:   su.Department,
		Phone:        su.Phone,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func init() {
	usersCreateCmd.Flags().StringVar(&createEmail, "email", "", "email address")
	usersCreateCmd.Flags().StringVar(&createPassword, "password", "", "password (required)")
	usersCreateCmd.Flags().StringVar(&createRole, "role", "viewer", "role: admin, manager or viewer")
	usersCreateCmd.Flags().StringVar(&createFullName, "full-name", "", "full name")
	usersCreateCmd.Flags().StringVar(&createDepartment, "department", "", "department")
	usersCreateCmd.Flags().StringVar(&createPhone, "phone", "", "phone number")

	usersSeedCmd.Flags().IntVar(&seedExtra, "extra", 0, "number of extra random viewer accounts")

	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersSeedCmd)
	rootCmd.AddCommand(usersCmd)
}
