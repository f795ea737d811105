// Package main implements the typeconform CLI tool: validate JSON
// instance files against a schema snapshot.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tc "github.com/typeconform/validator"
	"github.com/typeconform/validator/engine"
	"github.com/typeconform/validator/pkg/logger"
	"github.com/typeconform/validator/pkg/schema"
)

const (
	version = "0.1.0"
	usage   = `typeconform - entity instance validator

Usage:
  typeconform -snapshot schema.json -kind person [options] <file>...
  typeconform -snapshot schema.json -kind person -     (read from stdin)
  cat person.json | typeconform -snapshot schema.json -kind person -

Examples:
  typeconform -snapshot schema.json -kind person person.json
  typeconform -snapshot schema.json -kind person -output json *.json
  typeconform -snapshot schema.json -kind person -filter person.json

Options:
`
)

// OutputFormat specifies the output format.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds CLI configuration.
type Config struct {
	Snapshot    string
	Kind        string
	Output      OutputFormat
	Filter      bool
	Quiet       bool
	Verbose     bool
	ShowVersion bool
	Help        bool
	Files       []string
}

// ValidationOutput is one file's result in JSON output.
type ValidationOutput struct {
	Instance string        `json:"instance"`
	Kind     string        `json:"kind"`
	Valid    bool          `json:"valid"`
	Errors   int           `json:"errors"`
	Issues   []IssueOutput `json:"issues,omitempty"`
	Duration string        `json:"duration"`
}

// IssueOutput is a single error in JSON output.
type IssueOutput struct {
	Field   string `json:"field"`
	Path    string `json:"path,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("typeconform v%s\n", version)
		os.Exit(0)
	}

	if config.Help || len(config.Files) == 0 || config.Snapshot == "" || config.Kind == "" {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(config))
}

func parseFlags() *Config {
	config := &Config{Output: OutputText}

	var output string
	flag.StringVar(&config.Snapshot, "snapshot", "", "Schema snapshot JSON file (required)")
	flag.StringVar(&config.Kind, "kind", "", "Entity kind to validate against (required)")
	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.BoolVar(&config.Filter, "filter", false, "Report one error per field instead of all candidates")
	flag.BoolVar(&config.Quiet, "quiet", false, "Suppress progress output")
	flag.BoolVar(&config.Verbose, "verbose", false, "Log ensurer generation and timing detail")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if strings.EqualFold(output, "json") {
		config.Output = OutputJSON
	}
	config.Files = flag.Args()
	return config
}

func run(config *Config) int {
	switch {
	case config.Quiet:
		logger.Disable()
	case config.Verbose:
		logger.SetLevel(logger.LevelDebug)
	default:
		logger.SetLevel(logger.LevelInfo)
	}

	snap, err := schema.LoadFile(config.Snapshot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load snapshot: %v\n", err)
		return 1
	}

	opts := []tc.Option{}
	if config.Filter {
		opts = append(opts, tc.WithFilterErrors(true))
	}

	v, err := engine.New(snap, nil, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize validator: %v\n", err)
		return 1
	}
	if err := v.Build(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: snapshot does not resolve: %v\n", err)
		return 1
	}

	logger.Info("Validator ready, processing %d input(s)", len(config.Files))

	hasErrors := false
	outputs := make([]ValidationOutput, 0, len(config.Files))

	for _, file := range config.Files {
		if file == "-" {
			data, rerr := io.ReadAll(os.Stdin)
			if rerr != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", rerr)
				hasErrors = true
				continue
			}
			output, bad := validateData(v, data, "stdin", config)
			outputs = append(outputs, output)
			hasErrors = hasErrors || bad
			continue
		}

		matches, gerr := filepath.Glob(file)
		if gerr != nil {
			fmt.Fprintf(os.Stderr, "Error with pattern '%s': %v\n", file, gerr)
			hasErrors = true
			continue
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "No files match pattern: %s\n", file)
			hasErrors = true
			continue
		}

		for _, match := range matches {
			output, bad := validateFile(v, match, config)
			outputs = append(outputs, output)
			hasErrors = hasErrors || bad
		}
	}

	if config.Output == OutputJSON {
		jsonOutput, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(jsonOutput))
	}

	if hasErrors {
		return 1
	}
	return 0
}

func validateFile(v *engine.Validator, path string, config *Config) (ValidationOutput, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if config.Output == OutputText {
			fmt.Printf("Error reading %s: %v\n", path, err)
		}
		return ValidationOutput{
			Instance: path,
			Kind:     config.Kind,
			Valid:    false,
			Errors:   1,
			Issues: []IssueOutput{{
				Kind:    "exception",
				Message: fmt.Sprintf("failed to read file: %v", err),
			}},
		}, true
	}
	return validateData(v, data, path, config)
}

func validateData(v *engine.Validator, data []byte, name string, config *Config) (ValidationOutput, bool) {
	start := time.Now()
	result, err := v.ValidateJSON(config.Kind, data)
	duration := time.Since(start)

	if err != nil {
		if config.Output == OutputText {
			fmt.Printf("Error validating %s: %v\n", name, err)
		}
		return ValidationOutput{
			Instance: name,
			Kind:     config.Kind,
			Valid:    false,
			Errors:   1,
			Duration: duration.String(),
			Issues: []IssueOutput{{
				Kind:    "exception",
				Message: fmt.Sprintf("validation failed: %v", err),
			}},
		}, true
	}
	defer result.Release()

	output := ValidationOutput{
		Instance: name,
		Kind:     config.Kind,
		Valid:    result.Valid,
		Errors:   result.ErrorCount(),
		Duration: duration.Round(time.Microsecond).String(),
	}
	for _, e := range result.Errors {
		output.Issues = append(output.Issues, IssueOutput{
			Field:   e.Field,
			Path:    e.Path,
			Kind:    string(e.Kind),
			Message: e.Message,
		})
	}

	if config.Output == OutputText {
		printTextResult(name, result, duration)
	}

	return output, result.HasErrors()
}

func printTextResult(name string, result *tc.Result, duration time.Duration) {
	status := "VALID"
	if result.HasErrors() {
		status = "INVALID"
	}

	fmt.Printf("== %s ==\n", name)
	fmt.Printf("Status: %s\n", status)
	fmt.Printf("Errors: %d\n", result.ErrorCount())
	fmt.Printf("Duration: %s\n", duration.Round(time.Microsecond))

	if len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range result.Errors {
			kind := "STRUCT "
			if e.IsPrecondition() {
				kind = "PRECOND"
			}
			location := e.Path
			if location == "" {
				location = e.Field
			}
			fmt.Printf("  %s %s @ %s\n", kind, e.Message, location)
		}
	}

	fmt.Println()
}
