package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	cmdcalculate "ci-dashboard/command/calculate"
	cmdsample "ci-dashboard/command/sample"
	cmdweb "ci-dashboard/command/web"
)

// Virtual CI specialist dashboard over weekly OAE figures and downtime loss
// entries.
// Usage:
//   ci-dashboard sample [-data ./data]
//   ci-dashboard calculate [-data ./data]
//   ci-dashboard web [-addr :8080] [-data ./data] [-ui ./ui/dist]
// Notes:
// - sample writes the bundled dataset; calculate derives trend/Pareto CSVs;
//   web serves the interactive session (Pareto drill-down, 6M tagging,
//   action tracker with due-date alerts, CSV export).
// - All entered data is session-only; nothing is persisted beyond data/.

func main() {
	args := os.Args
	// Initialize slog logger (text to stderr, INFO level)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	// Optional .env for CONFIG_PATH and friends; absence is fine.
	_ = godotenv.Load()

	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		switch sub {
		case "sample":
			if err := cmdsample.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "calculate":
			if err := cmdcalculate.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "web":
			if err := cmdweb.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: ci-dashboard sample [-data ./data] | calculate [-data ./data] | web [-addr :8080] [-data ./data]\nENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml)")
	os.Exit(2)
}
