package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cdt-go/internal/app"
	"cdt-go/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a CdtApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Count", "Reload").
func newApp(operation string) (*app.CdtApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewCdtApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pw), nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", what, s)
	}
	return id, nil
}

var rootCmd = &cobra.Command{
	Use:   "cdt",
	Short: "Countdown ledger and analytics engine",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Prefixes:  %s\n", strings.Join(cfg.Prefixes, " "))
		fmt.Printf("Database:  %s\n", cfg.Database.Type)
		fmt.Printf("Vault:     %s\n", cfg.Vault.Type)
		return nil
	},
}

// countdown command
var countdownCmd = &cobra.Command{
	Use:   "countdown",
	Short: "Manage countdown registrations",
}

var countdownCreateCmd = &cobra.Command{
	Use:   "create CHANNEL_ID",
	Short: "Register a channel as a countdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverID, _ := cmd.Flags().GetInt64("server")
		prefixes, _ := cmd.Flags().GetStringSlice("prefix")

		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("CreateCountdown")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.CreateCountdown(id, serverID, prefixes); err != nil {
			a.Fail()
			return fmt.Errorf("creating countdown: %w", err)
		}

		fmt.Printf("Countdown %d registered\n", id)
		return nil
	},
}

var countdownDeleteCmd = &cobra.Command{
	Use:   "delete CHANNEL_ID",
	Short: "Delete a countdown and all of its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("DeleteCountdown")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteCountdown(id); err != nil {
			a.Fail()
			return fmt.Errorf("deleting countdown: %w", err)
		}

		fmt.Printf("Countdown %d deleted\n", id)
		return nil
	},
}

var countdownListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered countdowns",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverID, _ := cmd.Flags().GetInt64("server")

		a, err := newApp("ListCountdowns")
		if err != nil {
			return err
		}
		defer a.Close()

		countdowns, err := a.ListCountdowns(serverID)
		if err != nil {
			return err
		}

		if len(countdowns) == 0 {
			fmt.Println("No countdowns registered.")
			return nil
		}

		for _, cd := range countdowns {
			fmt.Printf("%d  server:%d  tz:UTC%+g  created:%s\n",
				cd.ID, cd.ServerID, cd.Timezone, cd.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var countdownSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change countdown settings",
}

var countdownSetTimezoneCmd = &cobra.Command{
	Use:   "timezone CHANNEL_ID OFFSET",
	Short: "Set a countdown's UTC offset in hours",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}
		offset, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid offset: %q", args[1])
		}
		if offset < -12 || offset > 14 {
			return fmt.Errorf("offset out of range: %g", offset)
		}

		a, err := newApp("SetTimezone")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetTimezone(id, offset); err != nil {
			a.Fail()
			return err
		}

		fmt.Printf("Countdown %d timezone set to UTC%+g\n", id, offset)
		return nil
	},
}

var countdownSetPrefixesCmd = &cobra.Command{
	Use:   "prefixes CHANNEL_ID PREFIX...",
	Short: "Replace a countdown's command prefixes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("SetPrefixes")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetPrefixes(id, args[1:]); err != nil {
			a.Fail()
			return err
		}

		fmt.Printf("Countdown %d prefixes set to %s\n", id, strings.Join(args[1:], " "))
		return nil
	},
}

var countdownSetReactionsCmd = &cobra.Command{
	Use:   "reactions CHANNEL_ID NUMBER [REACTION...]",
	Short: "Replace the custom reactions for a number (none to remove)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}
		number, err := parseID(args[1], "number")
		if err != nil {
			return err
		}

		a, err := newApp("SetReactions")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetReactions(id, number, args[2:]); err != nil {
			a.Fail()
			return err
		}

		if len(args) > 2 {
			fmt.Printf("Reactions for %d set\n", number)
		} else {
			fmt.Printf("Reactions for %d removed\n", number)
		}
		return nil
	},
}

// count command
var countCmd = &cobra.Command{
	Use:   "count CHANNEL_ID MESSAGE_ID AUTHOR_ID CONTENT",
	Short: "Submit a message to the countdown validator",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")

		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}
		messageID, err := parseID(args[1], "message ID")
		if err != nil {
			return err
		}
		authorID, err := parseID(args[2], "author ID")
		if err != nil {
			return err
		}

		timestamp := time.Now().UTC()
		if at != "" {
			timestamp, err = time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %q", at)
			}
		}

		a, err := newApp("Count")
		if err != nil {
			return err
		}
		defer a.Close()

		value, result, err := a.Count(id, messageID, authorID, args[3], timestamp)
		if err != nil {
			a.Fail()
			return err
		}

		fmt.Printf("%d  %s", value, result.Outcome)
		if result.Pin {
			fmt.Print("  [pin]")
		}
		if len(result.Reactions) > 0 {
			fmt.Printf("  %s", strings.Join(result.Reactions, " "))
		}
		fmt.Println()
		return nil
	},
}

// reload command
var reloadCmd = &cobra.Command{
	Use:   "reload CHANNEL_ID FILE",
	Short: "Clear a countdown and replay messages from a JSON lines file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("Reload")
		if err != nil {
			return err
		}
		defer a.Close()

		accepted, err := a.Reload(id, args[1])
		if err != nil {
			a.Fail()
			return fmt.Errorf("reload failed: %w", err)
		}

		fmt.Printf("Accepted %d contribution(s)\n", accepted)
		return nil
	},
}

// analytics command
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Countdown analytics",
}

var analyticsProgressCmd = &cobra.Command{
	Use:   "progress CHANNEL_ID",
	Short: "View countdown progress and rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("Progress")
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Progress(id)
		if err != nil {
			return err
		}

		fmt.Printf("Total:         %d\n", stats.Total)
		fmt.Printf("Current:       %d\n", stats.Current)
		fmt.Printf("Progress:      %d (%.2f%%)\n", stats.Progress, stats.Percentage)
		fmt.Printf("Rate:          %.2f/day\n", stats.Rate)
		fmt.Printf("Started:       %s (%s ago)\n", stats.StartTime.Format("2006-01-02 15:04"), stats.StartAge.Truncate(time.Minute))
		if stats.Current == 0 {
			fmt.Printf("Ended:         %s\n", stats.EndTime.Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("Estimated end: %s (in %s)\n", stats.EndTime.Format("2006-01-02 15:04"), (-stats.EndAge).Truncate(time.Minute))
		}
		if stats.LongestBreak.Duration > 0 {
			fmt.Printf("Longest break: %s starting %s\n",
				stats.LongestBreak.Duration.Truncate(time.Second),
				stats.LongestBreak.Start.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var analyticsEtaCmd = &cobra.Command{
	Use:   "eta CHANNEL_ID",
	Short: "View projected end time over the countdown's history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("ETA")
		if err != nil {
			return err
		}
		defer a.Close()

		points, err := a.ETA(id)
		if err != nil {
			return err
		}

		for _, p := range points {
			fmt.Printf("%s  %s\n", p.Timestamp.Format("2006-01-02 15:04"), p.ETA.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var analyticsContributorsCmd = &cobra.Command{
	Use:   "contributors CHANNEL_ID",
	Short: "View the contributor ranking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("Contributors")
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Contributors(id)
		if err != nil {
			return err
		}

		for _, s := range stats {
			fmt.Printf("#%-3d %-20d %6d  %6.2f%%\n", s.Rank, s.AuthorID, s.Contributions, s.Percentage)
		}
		return nil
	},
}

var analyticsHistoryCmd = &cobra.Command{
	Use:   "history CHANNEL_ID",
	Short: "View contributor share over the countdown's history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("ContributorHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		points, err := a.ContributorHistory(id)
		if err != nil {
			return err
		}

		for _, p := range points {
			fmt.Printf("%6d  %-20d  %6.2f%%\n", p.Progress, p.AuthorID, p.Percentage)
		}
		return nil
	},
}

var analyticsLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard CHANNEL_ID",
	Short: "View the points leaderboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetInt64("user")

		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("Leaderboard")
		if err != nil {
			return err
		}
		defer a.Close()

		if user != 0 {
			entry, err := a.LeaderboardFor(id, user)
			if err != nil {
				return err
			}
			fmt.Printf("#%d  %d points  %d contribution(s)  %.2f%%\n",
				entry.Rank, entry.Points, entry.Contributions, entry.Percentage)
			return nil
		}

		entries, err := a.Leaderboard(id)
		if err != nil {
			return err
		}

		for _, e := range entries {
			fmt.Printf("#%-3d %-20d %8d pts  %6d  %6.2f%%\n",
				e.Rank, e.AuthorID, e.Points, e.Contributions, e.Percentage)
		}
		return nil
	},
}

var analyticsHeatmapCmd = &cobra.Command{
	Use:   "heatmap CHANNEL_ID",
	Short: "View contribution counts by weekday and hour",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetInt64("user")

		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("Heatmap")
		if err != nil {
			return err
		}
		defer a.Close()

		cells, err := a.Heatmap(id, user)
		if err != nil {
			return err
		}

		for _, c := range cells {
			fmt.Printf("%-9s %02d:00  %d\n", c.Weekday, c.Hour, c.Messages)
		}
		return nil
	},
}

var analyticsSpeedCmd = &cobra.Command{
	Use:   "speed CHANNEL_ID",
	Short: "View contribution counts per time window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, _ := cmd.Flags().GetInt("hours")

		id, err := parseID(args[0], "channel ID")
		if err != nil {
			return err
		}

		a, err := newApp("Speed")
		if err != nil {
			return err
		}
		defer a.Close()

		buckets, err := a.Speed(id, hours)
		if err != nil {
			return err
		}

		for _, b := range buckets {
			fmt.Printf("%s  %d\n", b.PeriodStart.Format("2006-01-02 15:04"), b.Messages)
		}
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage encrypted ledger snapshots",
}

var snapshotInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupEncryption")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for new private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupEncryption(passphrase); err != nil {
			return fmt.Errorf("generating key pair: %w", err)
		}

		fmt.Println("Encryption keys generated")
		return nil
	},
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Encrypt the ledger and upload it to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SaveSnapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.SaveSnapshot()
		if err != nil {
			a.Fail()
			return fmt.Errorf("saving snapshot: %w", err)
		}

		fmt.Printf("Snapshot saved: %s\n", name)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vault snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListSnapshots")
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListSnapshots()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore DEST [NAME]",
	Short: "Decrypt a snapshot to DEST (latest when NAME is omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RestoreSnapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		name := ""
		if len(args) > 1 {
			name = args[1]
		}

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		if err := a.RestoreSnapshot(name, passphrase, args[0]); err != nil {
			return fmt.Errorf("restoring snapshot: %w", err)
		}

		fmt.Printf("Snapshot restored to %s\n", args[0])
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View ledger operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No ledger operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-16s  %s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// countdown subcommands
	countdownCmd.AddCommand(countdownCreateCmd)
	countdownCreateCmd.Flags().Int64("server", 0, "Server the channel belongs to")
	countdownCreateCmd.Flags().StringSlice("prefix", nil, "Command prefix (repeatable; config default when omitted)")
	countdownCmd.AddCommand(countdownDeleteCmd)
	countdownCmd.AddCommand(countdownListCmd)
	countdownListCmd.Flags().Int64("server", 0, "Only list countdowns for this server")
	countdownCmd.AddCommand(countdownSetCmd)
	countdownSetCmd.AddCommand(countdownSetTimezoneCmd)
	countdownSetCmd.AddCommand(countdownSetPrefixesCmd)
	countdownSetCmd.AddCommand(countdownSetReactionsCmd)

	// analytics subcommands
	analyticsCmd.AddCommand(analyticsProgressCmd)
	analyticsCmd.AddCommand(analyticsEtaCmd)
	analyticsCmd.AddCommand(analyticsContributorsCmd)
	analyticsCmd.AddCommand(analyticsHistoryCmd)
	analyticsCmd.AddCommand(analyticsLeaderboardCmd)
	analyticsLeaderboardCmd.Flags().Int64("user", 0, "Show a single contributor's row")
	analyticsCmd.AddCommand(analyticsHeatmapCmd)
	analyticsHeatmapCmd.Flags().Int64("user", 0, "Only count this contributor's messages")
	analyticsCmd.AddCommand(analyticsSpeedCmd)
	analyticsSpeedCmd.Flags().Int("hours", 24, "Window size in hours")

	// snapshot subcommands
	snapshotCmd.AddCommand(snapshotInitCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(countdownCmd)
	rootCmd.AddCommand(countCmd)
	countCmd.Flags().String("at", "", "Message timestamp (RFC3339; defaults to now)")
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}
