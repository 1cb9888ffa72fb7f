package cmd

import (
	"courseware_backend/internal/app"
	"courseware_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Run database migrations before serving")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// 非 release 模式启动时默认迁移
	migrate, _ := cmd.Flags().GetBool("migrate")
	migrate = migrate || cfg.Server.Mode != "release"

	application, err := app.NewApp(cfg, migrate)
	if err != nil {
		return err
	}
	defer logger.Log.Sync()

	return application.Run()
}
