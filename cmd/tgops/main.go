// Command tgops runs a Telegram bot for operating Flux HelmReleases and
// inspecting labeled application pods in a Kubernetes cluster.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// BuildTag is set during build
	BuildTag = "dev"
	// BuildDate is set during build
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tgops",
	Short: "Telegram ops bot for Flux HelmReleases and app pods",
	Long: `tgops - operate your cluster from Telegram

tgops lets authorized users inspect and remediate cluster health over
chat:

  - /checkreleases lists unhealthy Flux HelmReleases with a one-tap
    reconcile action (suspend/resume toggle)
  - /apps reports labeled application pods: phase, image tag, version, age
  - /logs shows configured log links per application

Usage and error telemetry is exported for Prometheus.

Environment Variables:
  TGOPS_TELEGRAM_TOKEN    Telegram bot token (required)
  TGOPS_USERS             Comma-separated allowed Telegram user IDs (required)
  TGOPS_LOGLINKS          JSON object mapping app name to log URL
  TGOPS_METRICS_ADDR      Metrics listen address (default :8000)
  TGOPS_APPS_SELECTOR     Label selector for app pods (default tgops=true)
  TGOPS_KUBE_KUBECONFIG   Kubeconfig path for local development
`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tgops version %s (built %s)\n", BuildTag, BuildDate)
		},
	})
}
