package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docent/internal/agent"
	"docent/internal/config"
	"docent/internal/contract"
	"docent/internal/finance"
	"docent/internal/hook"
	"docent/internal/hook/handlers"
	"docent/internal/llm"
	"docent/internal/llm/openai"
	"docent/internal/logger"
	"docent/internal/mcp"
	"docent/internal/qa"
	"docent/internal/segment"
	"docent/internal/tool"
	"docent/internal/tool/builtin"

	"github.com/spf13/cobra"
)

var (
	configFile   string
	apiBaseURL   string
	apiKey       string
	model        string
	temperature  float32
	maxIters     int
	contractsDir string
	verbose      bool
	noColor      bool

	qaOutput    string
	judgeModel  string
	forceFetch  bool
	listPattern string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docent",
		Short: "Docent agentic document QA",
		Long:  "An agentic assistant for navigating and answering questions about contracts and financial filings",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: docent.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-base-url", "", "API base URL override")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key override")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model override")
	rootCmd.PersistentFlags().Float32Var(&temperature, "temperature", -1, "Temperature override")
	rootCmd.PersistentFlags().IntVar(&maxIters, "max-iterations", 0, "Maximum agent iterations")
	rootCmd.PersistentFlags().StringVar(&contractsDir, "contracts-dir", "", "Contracts directory override")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	askCmd := &cobra.Command{
		Use:   "ask [task]",
		Short: "Run the agent on a task",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	segmentCmd := &cobra.Command{
		Use:   "segment [file]",
		Short: "Segment a document into sections",
		Args:  cobra.ExactArgs(1),
		RunE:  runSegment,
	}

	contractsCmd := &cobra.Command{
		Use:   "contracts",
		Short: "List contract files",
		RunE:  runContracts,
	}
	contractsCmd.Flags().StringVar(&listPattern, "pattern", "*.txt", "Glob pattern for contract files")

	qaCmd := &cobra.Command{
		Use:   "qa",
		Short: "QA benchmark commands",
	}

	qaRunCmd := &cobra.Command{
		Use:   "run [dataset] [document]",
		Short: "Run the agent over a QA dataset",
		Args:  cobra.ExactArgs(2),
		RunE:  runQA,
	}
	qaRunCmd.Flags().StringVar(&qaOutput, "output", "", "Results output file (default: qa_results_<timestamp>.json)")

	qaJudgeCmd := &cobra.Command{
		Use:   "judge [results-file]",
		Short: "Judge saved QA results with an LLM",
		Args:  cobra.ExactArgs(1),
		RunE:  runJudge,
	}
	qaJudgeCmd.Flags().StringVar(&judgeModel, "judge-model", "", "Judge model override")

	qaCmd.AddCommand(qaRunCmd, qaJudgeCmd)

	fetchCmd := &cobra.Command{
		Use:   "fetch [doc-name]",
		Short: "Download a FinanceBench filing PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}
	fetchCmd.Flags().BoolVar(&forceFetch, "force", false, "Re-download even if cached")

	convertCmd := &cobra.Command{
		Use:   "convert [doc-name]",
		Short: "Convert a filing PDF to markdown via OCR",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvert,
	}
	convertCmd.Flags().BoolVar(&forceFetch, "force", false, "Re-convert even if cached")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List models available at the API endpoint",
		RunE:  runModels,
	}

	rootCmd.AddCommand(askCmd, segmentCmd, contractsCmd, qaCmd, fetchCmd, convertCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves config file, environment, and flag overrides in
// that order.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if apiBaseURL != "" {
		cfg.API.BaseURL = apiBaseURL
	}
	if apiKey != "" {
		cfg.API.Key = apiKey
	}
	if model != "" {
		cfg.API.Model = model
	}
	if temperature >= 0 {
		cfg.API.Temperature = temperature
	}
	if maxIters > 0 {
		cfg.Agent.MaxIterations = maxIters
	}
	if contractsDir != "" {
		cfg.Contracts.Dir = contractsDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *logger.Logger {
	level := logger.LevelInfo
	if verbose {
		level = logger.LevelDebug
	}
	log := logger.NewLogger(os.Stdout, level)
	if noColor {
		log.SetColorMode(false)
	}
	return log
}

func newLLMClient(cfg *config.Config, modelName string) (llm.Client, error) {
	if cfg.API.Key == "" {
		return nil, fmt.Errorf("API key required (set OPENROUTER_API_KEY or use --api-key)")
	}
	return openai.NewClient(cfg.API.Key, modelName, cfg.API.BaseURL), nil
}

// buildRegistry wires the builtin toolset plus any configured MCP
// servers. The returned closer shuts MCP servers down.
func buildRegistry(ctx context.Context, cfg *config.Config, log *logger.Logger) (*tool.Registry, func(), error) {
	segmentModel := cfg.Agent.SegmentModel
	if segmentModel == "" {
		segmentModel = config.DefaultSegmentModel
	}

	segClient, err := newLLMClient(cfg, segmentModel)
	if err != nil {
		return nil, nil, err
	}
	segmenter := segment.New(segClient, log)

	reader := contract.NewReader(cfg.Contracts.Dir)

	registry := tool.NewRegistry()
	for _, t := range []tool.Tool{
		builtin.NewReadFileTool(),
		builtin.NewWriteFileTool(),
		builtin.NewRunCommandTool(),
		builtin.NewFindTextTool(),
		builtin.NewSegmentDocumentTool(segmenter),
		builtin.NewListContractsTool(reader),
	} {
		if err := registry.Register(t); err != nil {
			return nil, nil, err
		}
	}

	closer := func() {}
	if len(cfg.MCP.Servers) > 0 {
		manager := mcp.NewManager(registry)
		if err := manager.Initialize(ctx, cfg.MCP); err != nil {
			if manager.ServerCount() == 0 {
				return nil, nil, err
			}
			log.Warn("MCP initialization: %v", err)
		}
		log.Info("Connected MCP servers: %s", strings.Join(manager.ListServers(), ", "))
		closer = func() { manager.Close() }
	}

	return registry, closer, nil
}

func buildAgent(cfg *config.Config, client llm.Client, registry *tool.Registry) *agent.Agent {
	a := agent.New(client, registry, agent.Config{
		Temperature:   cfg.API.Temperature,
		MaxTokens:     cfg.API.MaxTokens,
		MaxIterations: cfg.Agent.MaxIterations,
	})

	if cfg.Hooks.CommandConfirm {
		hooks := hook.NewManager()
		hooks.Register(handlers.NewCommandConfirmHandler())
		a.SetHooks(hooks)
	}

	return a
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	client, err := newLLMClient(cfg, cfg.API.Model)
	if err != nil {
		return err
	}

	ctx := context.Background()
	registry, closeMCP, err := buildRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeMCP()

	a := buildAgent(cfg, client, registry)
	result, err := a.Run(ctx, strings.Join(args, " "), log)
	if err != nil {
		log.Error("Agent execution failed: %v", err)
		return err
	}

	fmt.Println(result)
	return nil
}

func runSegment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	segmentModel := cfg.Agent.SegmentModel
	if segmentModel == "" {
		segmentModel = config.DefaultSegmentModel
	}
	client, err := newLLMClient(cfg, segmentModel)
	if err != nil {
		return err
	}

	segmenter := segment.New(client, log)
	doc, err := segmenter.Segment(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Println("Document Segmentation Results:")
	fmt.Println(strings.Repeat("=", 50))
	for i, sec := range doc.Sections {
		fmt.Printf("%d. %s\n", i+1, sec.Title)
		fmt.Printf("   Lines: %d - %d\n", sec.StartIndex, sec.EndIndex)
	}
	fmt.Println(strings.Repeat("=", 50))
	return nil
}

func runContracts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader := contract.NewReader(cfg.Contracts.Dir)
	names, err := reader.List(listPattern)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Printf("No contract files found in %s\n", cfg.Contracts.Dir)
		return nil
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runQA(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	datasetPath, documentPath := args[0], args[1]

	pairs, err := qa.LoadDataset(datasetPath)
	if err != nil {
		return err
	}
	log.Info("Loaded %d questions from %s", len(pairs), datasetPath)

	client, err := newLLMClient(cfg, cfg.API.Model)
	if err != nil {
		return err
	}

	ctx := context.Background()
	registry, closeMCP, err := buildRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeMCP()

	// Fresh agent per question so context never leaks between runs
	factory := func() *agent.Agent {
		a := buildAgent(cfg, client, registry)
		a.SetSystemPrompt(agent.QASystemPrompt)
		return a
	}

	harness := qa.NewHarness(factory, cfg.API.Model, documentPath, log)
	results := harness.Run(ctx, pairs)

	output := qaOutput
	if output == "" {
		output = fmt.Sprintf("qa_results_%s.json", strings.ReplaceAll(results.Metadata.Timestamp, ":", ""))
	}

	if err := results.Save(output); err != nil {
		return err
	}

	log.Info("Results saved to: %s", output)
	log.Info("Total: %d, answerable: %d, impossible: %d, errors: %d",
		results.Summary.TotalQuestions, results.Summary.AnswerableQuestions,
		results.Summary.ImpossibleQuestions, results.Summary.ErrorCount)
	return nil
}

func runJudge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	resultsFile := args[0]
	results, err := qa.LoadResults(resultsFile)
	if err != nil {
		return err
	}

	jModel := judgeModel
	if jModel == "" {
		jModel = cfg.Agent.JudgeModel
	}
	if jModel == "" {
		jModel = config.DefaultJudgeModel
	}

	client, err := newLLMClient(cfg, jModel)
	if err != nil {
		return err
	}

	judge := qa.NewJudge(client, log)
	if err := judge.SetupCache(resultsFile); err != nil {
		return err
	}

	overall := judge.EvaluateAll(context.Background(), results)

	stem := strings.TrimSuffix(filepath.Base(resultsFile), filepath.Ext(resultsFile))
	reportFile := stem + "_llm_evaluation_report.txt"
	jsonFile := stem + "_llm_evaluation_detailed.json"

	if err := qa.SaveReport(overall, reportFile); err != nil {
		return err
	}
	if err := qa.SaveDetailed(overall, jsonFile); err != nil {
		return err
	}

	fmt.Print(qa.Report(overall))
	fmt.Printf("Report saved to: %s\n", reportFile)
	fmt.Printf("Detailed results: %s\n", jsonFile)
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	downloader := finance.NewDownloader(cfg.Finance.CacheDir, log)
	if cfg.Finance.MetadataFile != "" {
		if err := downloader.LoadMetadata(cfg.Finance.MetadataFile); err != nil {
			return err
		}
	}

	path, err := downloader.Download(context.Background(), args[0], forceFetch)
	if err != nil {
		return err
	}

	fmt.Printf("PDF available at: %s\n", path)
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	downloader := finance.NewDownloader(cfg.Finance.CacheDir, log)
	if cfg.Finance.MetadataFile != "" {
		if err := downloader.LoadMetadata(cfg.Finance.MetadataFile); err != nil {
			return err
		}
	}

	converter := finance.NewConverter(cfg.Finance.MistralKey, downloader, log)
	path, err := converter.Convert(context.Background(), args[0], forceFetch)
	if err != nil {
		return err
	}

	fmt.Printf("Markdown available at: %s\n", path)
	return nil
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newLLMClient(cfg, cfg.API.Model)
	if err != nil {
		return err
	}

	models, err := client.ListModels(context.Background())
	if err != nil {
		return err
	}

	for _, m := range models {
		fmt.Println(m)
	}
	return nil
}
