package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"family-ops/internal/app"
	"family-ops/internal/config"
	"family-ops/internal/plan"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to wire application: %v", err)
	}
	defer a.Close()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "week":
		if err := printWeek(ctx, a); err != nil {
			log.Fatalf("Failed to show week: %v", err)
		}
	case "suggest":
		suggestCmd := flag.NewFlagSet("suggest", flag.ExitOnError)
		member := suggestCmd.String("member", "", "Member to apply the suggestion to (omit for dry run)")
		week := suggestCmd.String("week", "", "Week id, defaults to the current week")
		suggestCmd.Parse(os.Args[2:])

		request := strings.Join(suggestCmd.Args(), " ")
		if request == "" {
			log.Fatal("suggest needs a request, e.g.: familyops suggest quick vegetarian dinners")
		}
		if err := runSuggest(ctx, a, *week, *member, request); err != nil {
			log.Fatalf("Suggestion failed: %v", err)
		}
	case "export":
		count, err := a.SnapshotWeeks(ctx)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("Exported %d week snapshots to %s.\n", count, cfg.ExportPath)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := a.MetricsStore.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printWeek(ctx context.Context, a *app.App) error {
	p, err := a.Plans.CurrentWeek(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Week %s (%s)\n", p.WeekID, p.Status)

	members := make([]string, 0, len(p.Members))
	for name := range p.Members {
		members = append(members, name)
	}
	sort.Strings(members)

	for _, name := range members {
		fmt.Printf("\n%s:\n", name)
		mp := p.Members[name]
		for _, day := range plan.Days {
			for _, slot := range plan.Slots {
				ref, ok := mp.Meals[day][slot]
				if !ok {
					continue
				}
				fmt.Printf("  %-10s %-10s %s\n", day, slot, ref.RecipeName)
			}
		}
	}

	fmt.Println("\nShopping list:")
	for _, item := range p.ShoppingList {
		fmt.Printf("  - %s (%g %s)\n", item.Ingredient, item.Quantity, item.Unit)
	}
	return nil
}

func runSuggest(ctx context.Context, a *app.App, weekID, member, request string) error {
	if a.Suggester == nil {
		return fmt.Errorf("no LLM provider configured")
	}

	if weekID == "" {
		p, err := a.Plans.CurrentWeek(ctx)
		if err != nil {
			return err
		}
		weekID = p.WeekID
	}

	suggestion, err := a.Suggester.Suggest(ctx, request)
	if err != nil {
		return err
	}
	if err := a.MetricsStore.RecordMeta(ctx, suggestion.Meta); err != nil {
		log.Printf("Warning: failed to record metrics: %v", err)
	}

	fmt.Printf("Suggestion for %s:\n", weekID)
	for _, meal := range suggestion.Meals {
		fmt.Printf("  %-10s %-10s %s\n", meal.Day, meal.Slot, meal.RecipeName)
		if meal.Note != "" {
			fmt.Printf("             note: %s\n", meal.Note)
		}
	}
	if suggestion.Notes != "" {
		fmt.Printf("  note: %s\n", suggestion.Notes)
	}

	if member == "" {
		fmt.Println("\nDry run. Pass -member to apply.")
		return nil
	}

	if _, err := a.Suggester.Apply(ctx, a.Plans, weekID, member, suggestion); err != nil {
		return err
	}
	fmt.Printf("\nApplied to %s's week.\n", member)
	return nil
}

func printUsage() {
	fmt.Println("Usage: familyops <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  week               Print the current week plan and shopping list")
	fmt.Println("  suggest            Ask the LLM for meal suggestions (use -member to apply)")
	fmt.Println("  export             Write JSON snapshots of every active week")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
