// paisa-admin is the operator CLI: password recovery, balance repair, and
// seeding, run directly against the database without a live server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paisa/internal/config"
	"paisa/internal/database"
	"paisa/internal/ledger"
	"paisa/internal/logger"
	"paisa/internal/models"
	"paisa/internal/services"
)

var newPassword string

func openDB() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	manager, err := database.NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := manager.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return manager.DB(), nil
}

var rootCmd = &cobra.Command{
	Use:   "paisa-admin",
	Short: "Operator commands for a Paisa instance",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(os.Getenv("ENV"))
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Overwrite the stored password and revoke all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(newPassword) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		db, err := openDB()
		if err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
				Unscoped().Delete(&models.Credential{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.Credential{PasswordHash: string(hash)}).Error; err != nil {
				return err
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
				Unscoped().Delete(&models.Session{}).Error; err != nil {
				return err
			}
			logger.Get().Warn("Password reset; all sessions revoked")
			return nil
		})
	},
}

var recomputeBalancesCmd = &cobra.Command{
	Use:   "recompute-balances",
	Short: "Rebuild every account balance from the transaction log",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		if err := ledger.RecomputeBalances(db); err != nil {
			return err
		}
		logger.Get().Info("Account balances recomputed")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default categories and cash account",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		return services.SeedDefaults(db)
	},
}

func main() {
	resetPasswordCmd.Flags().StringVarP(&newPassword, "password", "p", "", "New password")
	_ = resetPasswordCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(resetPasswordCmd, recomputeBalancesCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
