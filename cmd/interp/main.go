package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/aescanero/dago-interpolate/internal/config"
	"github.com/aescanero/dago-interpolate/pkg/interpolate"
)

var (
	// Version is set at build time
	Version = "dev"
)

func main() {
	app := &cli.Command{
		Name:    "interp",
		Usage:   "evaluate interpolation templates and expressions",
		Version: Version,
		Commands: []*cli.Command{
			renderCommand,
			evalCommand,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var commonFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:    "vars",
		Aliases: []string{"f"},
		Usage:   "YAML or JSON file with variables (repeatable, later files win)",
	},
	&cli.StringSliceFlag{
		Name:    "var",
		Aliases: []string{"v"},
		Usage:   "inline variable as key=value (repeatable, wins over files)",
	},
	&cli.BoolFlag{
		Name:  "dollar",
		Usage: "use ${expr} delimiters instead of {expr}",
	},
	&cli.StringFlag{
		Name:  "security",
		Usage: "security level: strict, moderate or permissive",
	},
	&cli.StringFlag{
		Name:  "culture",
		Usage: "BCP-47 formatting culture, e.g. en or de-DE",
	},
	&cli.BoolFlag{
		Name:  "strict",
		Usage: "fail on missing variables instead of substituting empty strings",
	},
}

var renderCommand = &cli.Command{
	Name:      "render",
	Usage:     "interpolate a template",
	ArgsUsage: "TEMPLATE",
	Flags:     commonFlags,
	Action: func(ctx context.Context, cmd *cli.Command) error {
		template := cmd.Args().First()
		if template == "" {
			return fmt.Errorf("template argument is required")
		}

		engine, opts, variables, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = engine.Close() }()
		defer func() { _ = logger.Sync() }()

		out, err := engine.Eval(ctx, template, variables, opts)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var evalCommand = &cli.Command{
	Name:      "eval",
	Usage:     "evaluate a single expression and print the raw value",
	ArgsUsage: "EXPRESSION",
	Flags:     commonFlags,
	Action: func(ctx context.Context, cmd *cli.Command) error {
		expression := cmd.Args().First()
		if expression == "" {
			return fmt.Errorf("expression argument is required")
		}

		engine, opts, variables, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = engine.Close() }()
		defer func() { _ = logger.Sync() }()

		value, err := engine.EvalExpression(ctx, expression, variables, opts)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			fmt.Println(value)
			return nil
		}
		fmt.Println(string(encoded))
		return nil
	},
}

// setup builds the engine, per-call options and variable map from config
// and flags.
func setup(cmd *cli.Command) (*interpolate.Engine, *interpolate.Options, map[string]any, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	engine, err := interpolate.New(
		interpolate.FromEnv(),
		interpolate.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	opts := interpolate.DefaultOptions()
	if cmd.Bool("dollar") {
		opts.Syntax = interpolate.SyntaxDollar
	}
	opts.ThrowOnMissingParameter = cmd.Bool("strict")
	opts.Culture = cmd.String("culture")
	opts.EnableDebugLogging = cfg.LogLevel == "debug"

	switch strings.ToLower(cmd.String("security")) {
	case "":
	case "strict":
		opts.SecurityLevel = interpolate.SecurityStrict
	case "moderate":
		opts.SecurityLevel = interpolate.SecurityModerate
	case "permissive":
		opts.SecurityLevel = interpolate.SecurityPermissive
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown security level %q", cmd.String("security"))
	}

	variables, err := loadVariables(cmd.StringSlice("vars"), cmd.StringSlice("var"))
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return engine, opts, variables, logger, nil
}

// loadVariables merges variable files in order, then inline key=value
// pairs on top.
func loadVariables(files, pairs []string) (map[string]any, error) {
	variables := make(map[string]any)

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read variables file %q: %w", file, err)
		}
		loaded := make(map[string]any)
		// yaml.v3 parses JSON as well, so one decoder covers both.
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse variables file %q: %w", file, err)
		}
		for k, v := range loaded {
			variables[k] = v
		}
	}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid variable %q, want key=value", pair)
		}
		variables[key] = parseScalar(value)
	}

	return variables, nil
}

// parseScalar gives inline values their natural type.
func parseScalar(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
