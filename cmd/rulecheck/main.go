package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumaplay/rulecheck/pkg/repair"
	"github.com/lumaplay/rulecheck/pkg/report"
	"github.com/lumaplay/rulecheck/pkg/schema"
	"github.com/lumaplay/rulecheck/pkg/sim"
	"github.com/lumaplay/rulecheck/pkg/validate"
	"github.com/lumaplay/rulecheck/pkg/vocab"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rulecheck",
	Short: "Minigame rule-set verification and repair",
	Long:  "rulecheck validates minigame trigger/action rule sets, proves success reachability, and repairs what it can deterministically.",
}

// --- validate ---

var (
	vocabPath  string
	jsonOutput bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [ruleset.json]",
	Short: "Validate a rule-set file against the capability table and semantic checks",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	v, err := loadVocab()
	if err != nil {
		return err
	}
	data, err := schema.FileBytes(args[0])
	if err != nil {
		return err
	}

	_, errs := validate.Bytes(data, v)
	if jsonOutput {
		if err := printJSON(map[string]any{
			"valid":  validate.Valid(errs),
			"errors": errs,
		}); err != nil {
			return err
		}
	} else {
		fmt.Print(report.Errors(errs))
	}

	if crit := len(validate.Criticals(errs)); crit > 0 {
		return fmt.Errorf("validation failed with %d critical error(s)", crit)
	}
	return nil
}

// --- simulate ---

var simulateCmd = &cobra.Command{
	Use:   "simulate [ruleset.json]",
	Short: "Prove or disprove that the success state is reachable",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	rs, err := schema.LoadFile(args[0])
	if err != nil {
		return err
	}

	rep := sim.Simulate(rs)
	if jsonOutput {
		if err := printJSON(rep); err != nil {
			return err
		}
	} else {
		fmt.Print(report.Simulation(rep))
	}

	if !rep.Reachable {
		return fmt.Errorf("success state is unreachable")
	}
	return nil
}

// --- repair ---

var (
	repairOut     string
	repairContext string
	briefOnly     bool
)

var repairCmd = &cobra.Command{
	Use:   "repair [ruleset.json]",
	Short: "Apply deterministic fixes; report what needs regeneration",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepair,
}

func runRepair(cmd *cobra.Command, args []string) error {
	v, err := loadVocab()
	if err != nil {
		return err
	}
	data, err := schema.FileBytes(args[0])
	if err != nil {
		return err
	}

	rs, errs := validate.Bytes(data, v)
	if rs == nil {
		fmt.Print(report.Errors(errs))
		return fmt.Errorf("rule set could not be decoded")
	}

	eng := &repair.Engine{}
	// The rewrite collaborator is optional; without credentials the engine
	// still applies every deterministic fix and reports the rest.
	if os.Getenv("RULECHECK_LLM_ENDPOINT") != "" {
		client, err := repair.NewOpenAIClientFromEnv()
		if err != nil {
			return err
		}
		eng.Rewriter = client
	}

	res, err := eng.Run(context.Background(), rs, errs, repairContext)
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		if err := printJSON(res); err != nil {
			return err
		}
	case briefOnly:
		fmt.Print(report.Brief(res.RegenerationBrief))
	default:
		fmt.Print(report.Repair(res))
		if res.RegenerationBrief != "" {
			fmt.Print(report.Brief(res.RegenerationBrief))
		}
	}

	if repairOut != "" && res.Repaired != nil {
		out, err := schema.Marshal(res.Repaired)
		if err != nil {
			return err
		}
		if err := os.WriteFile(repairOut, out, 0o644); err != nil {
			return fmt.Errorf("write repaired ruleset: %w", err)
		}
	}

	if res.RequiresFullRegeneration {
		return fmt.Errorf("rule set requires full regeneration")
	}
	if !res.Success {
		return fmt.Errorf("%d error(s) remain after repair", len(res.Remaining))
	}
	return nil
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export the rule-set JSON Schema to stdout",
	RunE:  runSchemaExport,
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	var out json.RawMessage = data
	formatted, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(string(formatted))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rulecheck %s (build: %s)\n", version, commit)
	},
}

func loadVocab() (*vocab.Vocabulary, error) {
	if vocabPath == "" {
		return vocab.Default(), nil
	}
	v, err := vocab.LoadFile(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return v, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as structured JSON")

	validateCmd.Flags().StringVar(&vocabPath, "vocab", "", "Path to a capability table YAML (default: built-in table)")

	repairCmd.Flags().StringVar(&vocabPath, "vocab", "", "Path to a capability table YAML (default: built-in table)")
	repairCmd.Flags().StringVar(&repairOut, "out", "", "Write the repaired rule set to this path")
	repairCmd.Flags().StringVar(&repairContext, "context", "", "Game description included in a regeneration brief")
	repairCmd.Flags().BoolVar(&briefOnly, "brief", false, "Print only the regeneration brief")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
