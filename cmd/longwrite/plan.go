package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"longwrite/internal/planner"

	"github.com/spf13/cobra"
)

var planOpts struct {
	topic string
	words int
	style string
	model string
	json  bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the balanced chapter outline for a topic",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		logger := newLogger()
		if planOpts.topic == "" {
			log.Fatalf("--topic is required")
		}

		client, err := initClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create model client: %v", err)
		}
		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()
		engine, err := initEngine(ctx, cfg, store, logger)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}

		words := pick(planOpts.words, cfg.Writer.TargetWords)
		model := pickString(planOpts.model, cfg.LLM.Model)

		fmt.Println("🔎 Gathering context...")
		background := engine.GatherContext(ctx, planOpts.topic)

		fmt.Println("🗺️  Planning outline...")
		plan := initPlanner(cfg, client, logger).Plan(ctx, planner.Request{
			Topic:       planOpts.topic,
			Context:     background,
			TargetWords: words,
			Style:       planner.ParseStyle(pickString(planOpts.style, cfg.Writer.Style)),
			Model:       model,
		})
		plan, err = planner.Allocate(plan, words)
		if err != nil {
			log.Fatalf("Planning failed: %v", err)
		}

		if planOpts.json {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(plan.Sections); err != nil {
				log.Fatalf("Failed to encode plan: %v", err)
			}
			return
		}
		if plan.Fallback {
			fmt.Println("⚠️  Model outline unusable; showing the fixed outline.")
		}
		for _, s := range plan.Sections {
			fmt.Printf("%2d. %s (%d words, min %d)\n", s.Index, s.Title, s.TargetWords, s.MinimumWords)
		}
	},
}

func init() {
	planCmd.Flags().StringVarP(&planOpts.topic, "topic", "t", "", "Document topic")
	planCmd.Flags().IntVarP(&planOpts.words, "words", "w", 0, "Total target words (default from config)")
	planCmd.Flags().StringVar(&planOpts.style, "style", "", "handbook, academic, presentation or blog")
	planCmd.Flags().StringVarP(&planOpts.model, "model", "m", "", "Model id (ollama/<name> for local)")
	planCmd.Flags().BoolVar(&planOpts.json, "json", false, "Print the plan as JSON")
}

func pick(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func pickString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
