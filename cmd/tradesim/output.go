package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/talgya/trade-towns/internal/engine"
	"github.com/talgya/trade-towns/internal/persistence"
	"github.com/talgya/trade-towns/internal/world"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func printHeader(s world.GameState) {
	titleColor.Println("\n╭───────────────────────────╮")
	titleColor.Println("│  Trade Towns              │")
	titleColor.Println("╰───────────────────────────╯")
	infoColor.Printf("Seed %s, %d towns\n\n", s.RNGSeed, len(s.Towns))
}

func printTurn(r engine.TurnReport) {
	titleColor.Printf("Turn %d\n", r.Turn)
	for _, t := range r.Trades {
		successColor.Printf("  %-10s %s buys %d %s from %s at %d (total %s)\n",
			t.TownID, t.Trade.Buyer(), t.Trade.Qty, t.Trade.Good, t.Trade.Seller(),
			t.UnitPriceApplied, humanize.Comma(int64(t.Trade.Total())))
	}
	for _, rej := range r.Rejections {
		errorColor.Printf("  %-10s rejected: %s\n", rej.TownID, rej.Error)
	}
	if n := r.Skipped(); n > 0 {
		fmt.Printf("  %d town(s) skipped\n", n)
	}
}

// printTowns renders the town table: stock and price per good, treasury
// and revealed tiers.
func printTowns(s world.GameState) {
	header := []string{"Town", "Control"}
	for _, g := range world.AllGoods {
		header = append(header, g.String(), g.String()+" $")
	}
	header = append(header, "Treasury", "Prosperity", "Military")

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader(header))
	for _, t := range s.Towns {
		control := "player"
		if t.IsAI() {
			control = t.AIProfile
		}
		row := []string{t.Name, control}
		for _, g := range world.AllGoods {
			row = append(row, humanize.Comma(int64(t.Resources[g])), strconv.Itoa(t.Prices[g]))
		}
		row = append(row, humanize.Comma(int64(t.Treasury)), t.Tiers.Prosperity.String(), t.Tiers.Military.String())
		table.Append(row)
	}
	fmt.Println()
	table.Render()
}

func printSummary(s world.GameState, j *persistence.Journal, played int) {
	trades := 0
	for turn := s.Turn - played; turn < s.Turn; turn++ {
		rows, err := j.Trades(turn)
		if err != nil {
			errorColor.Printf("journal: %v\n", err)
			return
		}
		trades += len(rows)
	}
	fmt.Println()
	successColor.Printf("Played %s turns, %s AI trades, %s in circulation\n",
		humanize.Comma(int64(played)), humanize.Comma(int64(trades)), humanize.Comma(int64(s.TotalTreasury())))
}
