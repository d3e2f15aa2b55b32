package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/store"

	"github.com/google/subcommands"
)

type offerCmd struct{}

func (*offerCmd) Name() string     { return "offer" }
func (*offerCmd) Synopsis() string { return "replaces the offered assets with a fresh random pick" }
func (*offerCmd) Usage() string {
	return `offer

Drops the current offer, picks new assets from the market listing and prints them.
`
}
func (*offerCmd) SetFlags(*flag.FlagSet) {}

func (*offerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	a.engine.Dispatch(ctx, store.DeleteOffered{})
	a.engine.Dispatch(ctx, store.FindNewOffer{})
	a.engine.Wait()

	state := a.engine.State()
	if state.UI.ErrorMessage != "" {
		fmt.Fprintln(os.Stderr, "Error:", state.UI.ErrorMessage)
		return subcommands.ExitFailure
	}
	printAssets(os.Stdout, state.Assets, func(a asset.Asset) bool { return a.Status == asset.StatusOffered })
	fmt.Printf("next offer after %s\n", state.Offer.NextNewAssetDate.Format("2006-01-02 15:04"))
	return subcommands.ExitSuccess
}
