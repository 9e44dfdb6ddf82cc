package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/account"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/catalog"
	"github.com/Alijeyrad/drivingschool_backend/pkg/crypto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/database"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/password"
)

const instructorBio = "Experienced driving instructor focused on safe, confident driving."

var seedInstructors = []account.CreateInstructorRequest{
	{
		Username:        "mohommad",
		Email:           "mohommad@example.com",
		FirstName:       "Mohommad",
		Bio:             instructorBio,
		ExperienceYears: 7,
		Rating:          4.9,
	},
	{
		Username:        "john_doe",
		Email:           "john.doe@example.com",
		FirstName:       "John",
		LastName:        "Doe",
		Bio:             instructorBio,
		ExperienceYears: 5,
		Rating:          4.7,
	},
}

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the stock lesson plans, instructors and the admin account",
		Long: `Insert the stock lesson plans, the two demo instructors and the admin
account. Existing rows are left alone, so the command can be re-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			plans, err := catalog.New(db, logger).SeedDefaults(ctx)
			if err != nil {
				return fmt.Errorf("failed to seed plans: %w", err)
			}
			fmt.Printf("Lesson plans created: %d\n", plans)

			cipher, err := crypto.NewCipher(cfg.Authentication.EncryptionKey)
			if err != nil {
				return err
			}
			// Seeding never issues tokens.
			accounts := account.New(db, account.NewMemorySessionStore(), nil, account.Options{
				Hasher:      password.NewHasher(password.FromCentralConfig(cfg.Password)),
				Cipher:      cipher,
				PhoneRegion: cfg.SMS.Region,
				Logger:      logger,
			})

			for _, req := range seedInstructors {
				req.Password = cfg.Seed.InstructorPassword
				created, err := accounts.EnsureInstructor(ctx, req)
				if err != nil {
					return fmt.Errorf("failed to seed instructor %s: %w", req.Username, err)
				}
				if created {
					fmt.Printf("Instructor created: %s\n", req.Username)
				}
			}

			if cfg.Seed.AdminPassword == "" {
				fmt.Println("seed.admin_password is empty, skipping admin account.")
				return nil
			}
			created, err := accounts.EnsureAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
			if err != nil {
				return fmt.Errorf("failed to seed admin: %w", err)
			}
			if created {
				fmt.Printf("Admin created: %s\n", cfg.Seed.AdminUsername)
			}

			fmt.Println("Seeding finished.")
			return nil
		},
	}

	return cmd
}
