package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Digital-Creators-Team/lotto-ledger/auth"
	"github.com/Digital-Creators-Team/lotto-ledger/config"
	"github.com/Digital-Creators-Team/lotto-ledger/events/kafka"
	"github.com/Digital-Creators-Team/lotto-ledger/logging"
	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
	"github.com/Digital-Creators-Team/lotto-ledger/simulation"
	"github.com/Digital-Creators-Team/lotto-ledger/wire"
)

var version = getVersion()

// getVersion returns the module version from build info
func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "lottod",
		Short: "Lottery draw and settlement ledger",
		Long: `lottod runs the central lottery ledger: sales offices issue tickets,
the ledger conducts draws and offices settle winning tickets.

Example:
  lottod serve --config ./config
  lottod simulate --players 400 --draws 20
  lottod token --user alice --role player`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file or directory (default: config/config-$ENV.yaml, then built-in defaults)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().Bool("follow", false, "Also replay draw events from Kafka into the jackpot feed and report store")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a season with simulated players and print the results",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().Int("players", 0, "Number of players (default from config)")
	simulateCmd.Flags().Int("draws", 0, "Number of draws (default from config)")
	simulateCmd.Flags().Int("offices", 0, "Number of offices (default from config)")
	simulateCmd.Flags().Int64("seed", 0, "Random seed (default from config, 0 uses the clock)")
	simulateCmd.Flags().Bool("json", false, "Print the report as JSON")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed JWT for a player or the draw coordinator",
		RunE:  runToken,
	}
	tokenCmd.Flags().StringP("user", "u", "", "User ID (required)")
	tokenCmd.Flags().StringP("name", "n", "", "Display name (default: user ID)")
	tokenCmd.Flags().StringP("role", "r", auth.RolePlayer, "Role: player or coordinator")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default from jwt.expiration)")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadPath(path)
	}
	if cfg, err := config.LoadByEnv("config"); err == nil {
		return cfg, nil
	}
	return config.Default(), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret must be set to serve the API")
	}

	rt, cleanup, err := wire.InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if follow, _ := cmd.Flags().GetBool("follow"); follow {
		if len(cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("--follow needs kafka.brokers")
		}
		sinks := providers.MultiPublisher{rt.App.JackpotService()}
		if rt.Reports != nil {
			sinks = append(sinks, rt.Reports)
		}
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.Kafka.Brokers,
			Topics:        []string{cfg.Kafka.Topic(config.TopicDrawConducted)},
			ConsumerGroup: cfg.Kafka.ConsumerGroup,
			Logger:        rt.Logger,
		}, sinks)
		consumer.Start()
		rt.App.OnShutdown(func() {
			if err := consumer.Stop(); err != nil {
				rt.Logger.Error().Err(err).Msg("Error stopping Kafka consumer")
			}
		})
	}

	if rt.Scheduler != nil {
		rt.Scheduler.Start()
		rt.App.OnShutdown(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := rt.Scheduler.Stop(ctx); err != nil {
				rt.Logger.Warn().Err(err).Msg("Scheduled draw still running at shutdown")
			}
		})
	}

	rt.Logger.Info().
		Str("version", version).
		Int("offices", cfg.Lottery.Offices).
		Bool("redis", rt.Reports != nil).
		Bool("kafka", len(cfg.Kafka.Brokers) > 0).
		Msg("Lottery ledger ready")

	return rt.App.Run()
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	balance, err := cfg.Simulation.InitialBalanceMinor()
	if err != nil {
		return err
	}
	funds, err := cfg.Lottery.InitialFundsMinor()
	if err != nil {
		return err
	}

	// Keep stdout for the report.
	cfg.Logging.Output = "stderr"
	if cfg.Logging.Level == "info" {
		cfg.Logging.Level = "warn"
	}

	simCfg := simulation.Config{
		Offices:        cfg.Lottery.Offices,
		Players:        cfg.Simulation.Players,
		Draws:          cfg.Simulation.Draws,
		InitialBalance: balance,
		InitialFunds:   funds,
		Seed:           cfg.Lottery.Seed,
		Logger:         logging.New(cfg.Logging),
	}
	if v, _ := cmd.Flags().GetInt("players"); v > 0 {
		simCfg.Players = v
	}
	if v, _ := cmd.Flags().GetInt("draws"); v > 0 {
		simCfg.Draws = v
	}
	if v, _ := cmd.Flags().GetInt("offices"); v > 0 {
		simCfg.Offices = v
	}
	if v, _ := cmd.Flags().GetInt64("seed"); v != 0 {
		simCfg.Seed = v
	}

	report, err := simulation.Run(cmd.Context(), simCfg)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, r *simulation.Report) {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "draw\tnumbers\tbets\tI\tII\tIII\tIV\tprize I\tjackpot\tfunds\tpaid\t")
	for _, d := range r.Draws {
		fmt.Fprintf(w, "%d\t%v\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t\n",
			d.Number, d.WinningNumbers, d.TotalBets,
			d.WinnerCounts[0], d.WinnerCounts[1], d.WinnerCounts[2], d.WinnerCounts[3],
			lotto.FormatAmount(d.PrizePerWinner[0]),
			lotto.FormatAmount(d.Jackpot),
			lotto.FormatAmount(d.Funds),
			lotto.FormatAmount(d.Paid),
		)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nTickets sold:      %d\n", r.Summary.LastTicketNumber)
	fmt.Fprintf(out, "Ledger funds:      %s\n", lotto.FormatAmount(r.Summary.Funds))
	fmt.Fprintf(out, "Tax collected:     %s\n", lotto.FormatAmount(r.TaxCollected))
	fmt.Fprintf(out, "Subsidies given:   %s\n", lotto.FormatAmount(r.SubsidiesGiven))
	fmt.Fprintf(out, "Top player:        %s (%s)\n", r.TopPlayer, lotto.FormatAmount(r.TopBalance))
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is not configured")
	}

	user, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	role, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if name == "" {
		name = user
	}
	if role != auth.RolePlayer && role != auth.RoleCoordinator {
		return fmt.Errorf("unknown role %q", role)
	}
	if ttl <= 0 {
		ttl = cfg.JWT.Expiration
	}

	tok, err := auth.GenerateToken(cfg.JWT.Secret, user, name, role, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
