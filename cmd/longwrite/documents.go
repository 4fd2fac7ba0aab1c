package main

import (
	"errors"
	"fmt"
	"log"

	"longwrite/internal/generator"
	"longwrite/internal/storage"

	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated documents",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		docs, err := store.ListDocuments(cmd.Context(), listLimit)
		if err != nil {
			log.Fatalf("Failed to list documents: %v", err)
		}
		if len(docs) == 0 {
			fmt.Println("No documents yet.")
			return
		}
		for _, d := range docs {
			fmt.Printf("%s  %s  %6d words  %-24s %s\n", d.ID, d.CreatedAt.Format("2006-01-02 15:04"), d.WordCount, d.Model, d.Title)
		}
	},
}

var showHTML bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		doc, err := store.GetDocument(cmd.Context(), args[0])
		if errors.Is(err, storage.ErrNotFound) {
			log.Fatalf("No document with id %s", args[0])
		}
		if err != nil {
			log.Fatalf("Failed to load document: %v", err)
		}

		if !showHTML {
			fmt.Print(doc.Body)
			return
		}
		html, err := generator.RenderHTML(doc.Body)
		if err != nil {
			log.Fatalf("Failed to render HTML: %v", err)
		}
		fmt.Print(html)
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum documents to list (0 for all)")
	showCmd.Flags().BoolVar(&showHTML, "html", false, "Render as HTML")
}
