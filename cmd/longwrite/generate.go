package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"longwrite/internal/generator"
	"longwrite/internal/planner"
	"longwrite/internal/storage"

	"github.com/spf13/cobra"
)

var genOpts struct {
	topic       string
	words       int
	style       string
	model       string
	contextFile string
	out         string
	html        bool
	report      string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a long-form document on a topic",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		logger := newLogger()
		warnConfig(cfg)
		if strings.TrimSpace(genOpts.topic) == "" {
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
			log.Fatalf("Setup failed: %v\nCheck your config and API keys.", err)
		}

		words := pick(genOpts.words, cfg.Writer.TargetWords)
		model := pickString(genOpts.model, cfg.LLM.Model)
		style := planner.ParseStyle(pickString(genOpts.style, cfg.Writer.Style))

		var background string
		if genOpts.contextFile != "" {
			data, err := os.ReadFile(genOpts.contextFile)
			if err != nil {
				log.Fatalf("Failed to read context file: %v", err)
			}
			background = string(data)
			fileEngine, err := initFileEngine(ctx, cfg, genOpts.contextFile, background, logger)
			if err != nil {
				fmt.Printf("⚠️  %v\n", err)
			} else {
				engine = fileEngine
			}
		} else {
			fmt.Println("🔎 Gathering context...")
			background = engine.GatherContext(ctx, genOpts.topic)
		}

		printTitle(fmt.Sprintf("📚 %s (%d words, %s, %s)", genOpts.topic, words, style, model))
		writer := generator.NewSectionWriter(client, logger).WithMaxRetries(cfg.Writer.MaxRetries)
		orch := generator.NewOrchestrator(initPlanner(cfg, client, logger), writer, logger)

		var report *generator.Report
		if genOpts.report != "" {
			report = generator.NewReport(genOpts.topic, model)
		}

		start := time.Now()
		doc, err := orch.Generate(ctx, generator.Request{
			Topic:       genOpts.topic,
			Context:     background,
			TargetWords: words,
			Model:       model,
			Style:       style,
			Retrieve:    engine.Retrieve,
			Progress:    printProgress,
			Report:      report,
		})
		if errors.Is(err, generator.ErrEmptyPlan) {
			log.Fatalf("Nothing to write: %v", err)
		}
		if err != nil {
			log.Fatalf("Generation stopped: %v", err)
		}
		fmt.Printf("✅ Generated %d sections, %d words in %v.\n", len(doc.Sections), doc.TotalWordCount, time.Since(start).Round(time.Second))
		if n := doc.DegradedCount(); n > 0 {
			fmt.Printf("⚠️  %d sections are shorter than their minimum.\n", n)
		}
		if doc.FallbackPlan {
			fmt.Println("⚠️  The fixed outline was used.")
		}

		markdown := doc.Markdown()
		outPath := genOpts.out
		if outPath == "" {
			outPath = filepath.Join(cfg.Output.Dir, slugify(genOpts.topic)+".md")
		}
		if err := writeFile(outPath, markdown); err != nil {
			log.Fatalf("Failed to write document: %v", err)
		}
		fmt.Printf("📄 Markdown: %s\n", outPath)

		if genOpts.html || cfg.Output.HTML {
			html, err := generator.RenderHTML(markdown)
			if err != nil {
				fmt.Printf("⚠️  HTML export failed: %v\n", err)
			} else {
				htmlPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".html"
				if err := writeFile(htmlPath, html); err != nil {
					fmt.Printf("⚠️  HTML export failed: %v\n", err)
				} else {
					fmt.Printf("🌐 HTML: %s\n", htmlPath)
				}
			}
		}

		if report != nil {
			if err := report.Save(genOpts.report); err != nil {
				fmt.Printf("⚠️  Failed to save report: %v\n", err)
			} else {
				fmt.Printf("📊 Report: %s\n", genOpts.report)
			}
		}

		// Persistence failure keeps the document on disk; it is not fatal.
		id, err := store.SaveDocument(ctx, toRecord(doc, genOpts.topic, model, style, markdown))
		if err != nil {
			fmt.Printf("⚠️  Failed to save document to database: %v\n", err)
			return
		}
		fmt.Printf("💾 Saved as %s\n", id)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.topic, "topic", "t", "", "Document topic")
	f.IntVarP(&genOpts.words, "words", "w", 0, "Total target words (default from config)")
	f.StringVar(&genOpts.style, "style", "", "handbook, academic, presentation or blog")
	f.StringVarP(&genOpts.model, "model", "m", "", "Model id (ollama/<name> for local)")
	f.StringVar(&genOpts.contextFile, "context-file", "", "Use this file as background context and retrieval source instead of the store")
	f.StringVarP(&genOpts.out, "out", "o", "", "Markdown output path (default <output.dir>/<topic>.md)")
	f.BoolVar(&genOpts.html, "html", false, "Also write an HTML export")
	f.StringVar(&genOpts.report, "report", "", "Write a JSON generation report to this path")
}

func toRecord(doc *generator.Document, topic, model string, style planner.Style, markdown string) *storage.DocumentRecord {
	rec := &storage.DocumentRecord{
		Topic:     topic,
		Title:     doc.Title,
		Model:     model,
		Style:     string(style),
		WordCount: doc.TotalWordCount,
		Body:      markdown,
		Sections:  make([]storage.SectionRecord, 0, len(doc.Sections)),
	}
	for _, s := range doc.Sections {
		rec.Sections = append(rec.Sections, storage.SectionRecord{
			Title:     s.Spec.Title,
			Content:   s.Content,
			WordCount: s.WordCount,
			Degraded:  s.Degraded,
		})
	}
	return rec
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "document"
	}
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	return slug
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
