package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"scriptor/internal/config"
	"scriptor/internal/eval"
	"scriptor/internal/llm"
	"scriptor/internal/media"
	"scriptor/internal/pipeline"
	"scriptor/internal/server"
	"scriptor/internal/store"
	"scriptor/internal/tools"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "scriptor",
		Short: "Research handout generation and review service",
	}
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(evalCmd)

	generateCmd.Flags().String("topic", "", "Research topic to generate a handout for")
	generateCmd.Flags().String("llm", "", "Model selector, e.g. openai:gpt-4o-mini (default from config)")
	generateCmd.Flags().String("workdir", "", "Output directory (default from config)")
	generateCmd.Flags().Bool("no-pdf", false, "Skip the pdflatex compile step")
	generateCmd.Flags().Bool("json", false, "Print the result as JSON")

	serveCmd.Flags().String("addr", "", "Listen address (default from config)")

	evalCmd.Flags().String("topic", "", "Research topic to evaluate")
	evalCmd.Flags().String("llm", "", "Comma-separated model selectors (default: all registered)")
	evalCmd.Flags().String("workdir", "eval_runs", "Directory for per-model outputs")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func openStore(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.Storage.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open store at %s: %v", cfg.Storage.DatabaseURL, err)
	}
	return st
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a LaTeX research handout for a topic",
	Run: func(cmd *cobra.Command, args []string) {
		topic, _ := cmd.Flags().GetString("topic")
		if strings.TrimSpace(topic) == "" {
			log.Fatal("--topic is required")
		}
		model, _ := cmd.Flags().GetString("llm")
		workdir, _ := cmd.Flags().GetString("workdir")
		noPDF, _ := cmd.Flags().GetBool("no-pdf")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg := loadConfig()
		if workdir == "" {
			workdir = cfg.Storage.Workdir
		}

		catalog := llm.NewCatalog(cfg)
		pipe := pipeline.New(catalog)

		result, err := pipe.Run(context.Background(), pipeline.Options{
			Topic:      topic,
			Model:      model,
			Workdir:    workdir,
			CompilePDF: !noPDF,
		})
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		if asJSON {
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				log.Fatalf("Failed to encode result: %v", err)
			}
			fmt.Println(string(out))
			return
		}
		fmt.Printf("Model:  %s\n", result.Model)
		fmt.Printf("LaTeX:  %s\n", result.TexPath)
		if result.PDFPath != "" {
			fmt.Printf("PDF:    %s\n", result.PDFPath)
		} else {
			fmt.Println("PDF:    not produced")
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation and review HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()

		catalog := llm.NewCatalog(cfg)
		srv := server.New(cfg, st, catalog,
			pipeline.New(catalog),
			tools.New(cfg),
			media.NewRenderer(cfg.Storage.AssetRoot),
		)
		if err := srv.Start(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List stored topic slugs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()

		slugs, err := st.ListTopicSlugs(context.Background())
		if err != nil {
			log.Fatalf("Failed to list topics: %v", err)
		}
		if len(slugs) == 0 {
			fmt.Println("No topics stored yet.")
			return
		}
		for _, slug := range slugs {
			fmt.Println(slug)
		}
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Generate one topic across several models and compare",
	Run: func(cmd *cobra.Command, args []string) {
		topic, _ := cmd.Flags().GetString("topic")
		if strings.TrimSpace(topic) == "" {
			log.Fatal("--topic is required")
		}
		modelsFlag, _ := cmd.Flags().GetString("llm")
		workdir, _ := cmd.Flags().GetString("workdir")

		var models []string
		for _, name := range strings.Split(modelsFlag, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				models = append(models, trimmed)
			}
		}

		cfg := loadConfig()
		catalog := llm.NewCatalog(cfg)
		evaluator := eval.New(pipeline.New(catalog), catalog)

		for _, outcome := range evaluator.Run(context.Background(), topic, workdir, models) {
			if outcome.Err != "" {
				fmt.Printf("%-28s FAILED  %v (%s)\n", outcome.Model, outcome.Err, outcome.Elapsed.Round(10*time.Millisecond))
				continue
			}
			fmt.Printf("%-28s %6d bytes  %s  (%s)\n",
				outcome.Model, outcome.BodyBytes, outcome.TexPath, outcome.Elapsed.Round(10*time.Millisecond))
		}
	},
}
