package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"webdistill/agent"
	"webdistill/config"
	srv "webdistill/internal/server"
	"webdistill/telemetry"
)

func main() {
	var root = &cobra.Command{Use: "webdistill"}
	root.AddCommand(serveCMD(), askCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCMD() *cobra.Command {
	var serveAddr string
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the retrieval gateway HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if serveAddr == "" {
				serveAddr = os.Getenv("WEBDISTILL_HTTP_ADDR")
			}
			return srv.Run(cmd.Context(), cfg, serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}

func askCMD() *cobra.Command {
	var cfgPath string
	var ask = &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer a single query and print the key points",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := cmd.Context()

			orch, err := agent.NewOrchestrator(ctx, cfg, telemetry.NewLogger("ORCH"), telemetry.New())
			if err != nil {
				return err
			}

			answer, err := orch.Answer(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(answer.Points) == 0 {
				fmt.Println("no key points found")
				return nil
			}
			for _, p := range answer.Points {
				fmt.Printf("- %s (%s)\n", p.Text, p.SourceURL)
			}
			return nil
		},
	}
	ask.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return ask
}
