package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/account"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/listings"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/pipeline"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/render"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/steam"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

// Exit codes are part of the CLI contract.
const (
	exitOK        = 0
	exitNoKey     = 2
	exitAccess    = 3
	exitTransport = 4
	exitFatal     = 5
)

type flags struct {
	steamID             string
	user                string
	accountsPath        string
	includeUnmarketable bool
	sleep               float64
	csvPath             string
	key                 string
	verbose             bool
	probe               bool
}

func main() {
	os.Exit(run())
}

func run() int {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	cmd := newRootCmd(log)
	if err := cmd.Execute(); err != nil {
		var confErr *types.ConfigError
		var accessErr *types.AccessError
		var transportErr *types.TransportError
		switch {
		case errors.As(err, &confErr):
			fmt.Fprintf(os.Stderr, "%s\n", confErr.Reason)
			return exitNoKey
		case errors.As(err, &accessErr):
			fmt.Fprintf(os.Stderr, "[inventory] %v\n", err)
			return exitAccess
		case errors.As(err, &transportErr):
			fmt.Fprintf(os.Stderr, "[http] %v\n", err)
			return exitTransport
		default:
			fmt.Fprintf(os.Stderr, "[fatal] %v\n", err)
			return exitFatal
		}
	}
	return exitOK
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "cs2val",
		Short:         "Value a Steam CS2 inventory using CSFloat prices",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValuation(cmd, log, f)
		},
	}

	cmd.Flags().StringVar(&f.steamID, "steamid", "", "SteamID64")
	cmd.Flags().StringVar(&f.user, "user", "", "account alias or vanity profile name")
	cmd.Flags().StringVar(&f.accountsPath, "accounts", "", "YAML file mapping aliases to SteamID64s")
	cmd.Flags().BoolVar(&f.includeUnmarketable, "include-unmarketable", false, "count unmarketable items too")
	cmd.Flags().Float64Var(&f.sleep, "sleep", listings.DefaultPoliteness.Seconds(), "seconds to pause between CSFloat requests")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "write results to a CSV file")
	cmd.Flags().StringVar(&f.key, "key", "", "CSFloat API key override")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "log CSFloat requests")
	cmd.Flags().BoolVar(&f.probe, "probe", false, "probe CSFloat access by fetching site-wide listings")
	cmd.MarkFlagsMutuallyExclusive("steamid", "user")
	cmd.MarkFlagsOneRequired("steamid", "user")

	return cmd
}

func runValuation(cmd *cobra.Command, log *logrus.Logger, f flags) error {
	// .env is a convenience for local runs; absence is fine.
	_ = godotenv.Load()
	viper.AutomaticEnv()

	if f.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	key := f.key
	if key == "" {
		key = viper.GetString("CSFLOAT_API_KEY")
	}
	if key == "" {
		key = viper.GetString("FLOAT_TOKEN")
	}
	if key == "" {
		return &types.ConfigError{Reason: "no CSFloat API key found: set CSFLOAT_API_KEY or pass --key"}
	}

	client, err := listings.New(listings.Options{
		APIKey:     key,
		Politeness: time.Duration(f.sleep * float64(time.Second)),
		Logger:     log,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if f.probe {
		data, err := client.Probe(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[probe] fetched %d listings total\n", len(data))
		if len(data) > 0 {
			fmt.Fprintf(out, "[probe] first id=%s price_cents=%d\n", data[0].ID, data[0].Price)
		}
		return nil
	}

	sc := steam.New(steam.Options{Logger: log})

	steamID := f.steamID
	if steamID == "" {
		steamID, err = resolveUser(cmd, sc, f)
		if err != nil {
			return err
		}
	}

	opts := pipeline.Options{
		IncludeUnmarketable: f.includeUnmarketable,
		CSVPath:             f.csvPath,
		Render:              render.Options{ShowSource: true, MaxColWidth: nameColWidth()},
	}
	runner := &pipeline.Runner{
		Fetcher:  sc,
		Pricer:   client,
		Renderer: render.NewTableRenderer(),
		Writer:   out,
		Log:      log,
	}
	return runner.Execute(cmd.Context(), steamID, opts)
}

// resolveUser turns --user into a SteamID64: the account book first, then
// vanity resolution against the Steam community site.
func resolveUser(cmd *cobra.Command, sc *steam.Client, f flags) (string, error) {
	if f.accountsPath != "" {
		book, err := account.Load(f.accountsPath)
		if err != nil {
			return "", err
		}
		if id, ok := book.Resolve(f.user); ok {
			return id, nil
		}
	}
	return sc.ResolveVanity(cmd.Context(), f.user)
}

// nameColWidth caps the item column so long skin names do not wrap the
// whole table on narrow terminals.
func nameColWidth() int {
	w := detectTerminalWidth()
	if w <= 0 {
		return 0
	}
	const reserved = 44 // qty, unit, subtotal, mode, source columns
	if w-reserved < 20 {
		return 20
	}
	return w - reserved
}
