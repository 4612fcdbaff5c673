/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"log"

	"github.com/mautops/payment-ledger/internal/config"
	"github.com/mautops/payment-ledger/internal/database"
	"github.com/mautops/payment-ledger/internal/model"
	"github.com/mautops/payment-ledger/internal/repository"
	"github.com/mautops/payment-ledger/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Administrative reset of the ledger",
	Long: `Wipe all payments and audit entries, remove payment methods outside
the protected whitelist, and clear role and group bindings.

This is the only sanctioned way to delete committed payment records.
Requires the --yes flag to proceed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return fmt.Errorf("refusing to reset without --yes")
		}

		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 连接数据库
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()

		// 3. 清空台账与配置(单事务)
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("1 = 1").Delete(&model.AuditEntryModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete audit entries: %w", err)
			}
			if err := tx.Where("1 = 1").Delete(&model.PaymentModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete payments: %w", err)
			}
			if err := tx.Model(&model.ConfigEntryModel{}).
				Where("key IN ?", []string{
					model.ConfigKeyInitiator,
					model.ConfigKeyApprover,
					model.ConfigKeyViewer,
					model.ConfigKeyGroup,
				}).
				Update("value", "").Error; err != nil {
				return fmt.Errorf("failed to clear role bindings: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		// 4. 清理自定义支付方式(台账已空,全部零引用)
		methodSvc := service.NewMethodService(
			repository.NewMethodRepository(db),
			repository.NewPaymentRepository(db),
		)
		pruned, err := methodSvc.PruneUnreferenced()
		if err != nil {
			return fmt.Errorf("failed to prune custom methods: %w", err)
		}

		log.Printf("Ledger reset completed, %d custom method(s) pruned. Restart the server.", pruned)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().String("config", "", "Config file path")
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
