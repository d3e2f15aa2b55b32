package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/store"

	"github.com/google/subcommands"
)

type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "refreshes prices of the saved portfolio once and prints it" }
func (*updateCmd) Usage() string {
	return `update

Fetches current prices and histories for all tracked assets, saves the state and prints the portfolio.
`
}
func (*updateCmd) SetFlags(*flag.FlagSet) {}

func (*updateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	a.engine.Dispatch(ctx, store.UpdateAssets{})
	a.engine.Wait()

	state := a.engine.State()
	printAssets(os.Stdout, state.Assets, func(a asset.Asset) bool { return a.Status != asset.StatusOffered })
	if state.UI.ErrorMessage != "" {
		fmt.Fprintln(os.Stderr, "Error:", state.UI.ErrorMessage)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printAssets(w io.Writer, assets []asset.Asset, keep func(asset.Asset) bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tSTATUS\tAMOUNT\tPRICE\tVALUE\t")
	for _, a := range assets {
		if !keep(a) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.6g\t%s\t%s\t\n", a.Symbol, a.Status, a.Amount(), asset.FormatUSD(a.Price), asset.FormatUSD(a.Value()))
	}
	_ = tw.Flush()
}
