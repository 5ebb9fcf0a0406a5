package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Ollama server status",
	Long:  `Probe the configured Ollama server and report reachability.`,
	RunE:  runStatus,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models installed on the Ollama server",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	ok, detail := svc.ollama.Status(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "Server: %s\n", detail)
	fmt.Fprintf(cmd.OutOrStdout(), "Model:  %s\n", svc.ollama.Model())
	if !ok {
		return nil
	}

	models, err := svc.ollama.Models(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed models: %d\n", len(models))
	return nil
}

func runModels(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	models, err := svc.ollama.Models(cmd.Context())
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no models installed")
		return nil
	}
	for _, model := range models {
		fmt.Fprintln(cmd.OutOrStdout(), model)
	}
	return nil
}
