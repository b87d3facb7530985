package main

import (
	"fmt"
	"os"

	_ "crmm/swagger" // swagger docs

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crmm",
	Short: "crmm backend",
	Long:  "crmm hosts projects, groups them into organisations and governs access through teams.",
}

// @title crmm Backend API
// @version 1.0
// @description API for projects, organisations and teams
// @termsOfService http://swagger.io/terms/

// @host localhost:4005
// @BasePath /api/v1
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
