// Package main is the entry point for the jwkset command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/jwkset/internal/config"
	"github.com/vyrodovalexey/jwkset/internal/keygen"
	"github.com/vyrodovalexey/jwkset/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

const usage = `Usage: jwkset [flags] <command>

Commands:
  inspect   list the signers and verifiers of the key set
  sign      sign stdin with the signer -kid, print a base64url signature
  verify    verify stdin against -sig with the verifier -kid
  generate  print a new JWK set holding a private and a public key
  watch     keep the key set loaded, reload on change, serve metrics

Flags:
`

// errUsage reports a command line that cannot be run.
var errUsage = errors.New("invalid usage")

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	jwksPath    string
	logLevel    string
	logFormat   string
	showVersion bool
	kid         string
	bits        int
	alg         string
	sig         string
	command     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "jwkset: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run executes one command line.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if flags.showVersion {
		printVersion(stdout)
		return nil
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a := &app{
		cfg:    cfg,
		flags:  flags,
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
	}

	switch flags.command {
	case "inspect":
		return a.inspect(ctx)
	case "sign":
		return a.sign(ctx)
	case "verify":
		return a.verify(ctx)
	case "generate":
		return a.generate()
	case "watch":
		return a.watch(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, flags.command)
	}
}

// parseFlags parses command line flags.
func parseFlags(args []string, output io.Writer) (cliFlags, error) {
	var flags cliFlags

	fs := flag.NewFlagSet("jwkset", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&flags.configPath, "config", getEnvOrDefault("JWKSET_CONFIG_PATH", ""),
		"Path to configuration file")
	fs.StringVar(&flags.jwksPath, "jwks", "",
		"Path to the JWK set document (overrides keySet.path)")
	fs.StringVar(&flags.logLevel, "log-level", getEnvOrDefault("JWKSET_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error)")
	fs.StringVar(&flags.logFormat, "log-format", getEnvOrDefault("JWKSET_LOG_FORMAT", ""),
		"Log format (json, console)")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")
	fs.StringVar(&flags.kid, "kid", "", "Key ID for sign, verify and generate")
	fs.IntVar(&flags.bits, "bits", keygen.DefaultBits, "RSA key size for generate")
	fs.StringVar(&flags.alg, "alg", keygen.DefaultAlgorithm, "Signature algorithm for generate")
	fs.StringVar(&flags.sig, "sig", "", "Base64url signature for verify")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, fmt.Errorf("%w: %w", errUsage, err)
	}

	if flags.showVersion {
		return flags, nil
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return cliFlags{}, fmt.Errorf("%w: expected exactly one command", errUsage)
	}
	flags.command = fs.Arg(0)

	return flags, nil
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "jwkset version %s\n", version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

// loadConfig loads the configuration file, if any, and applies flag overrides.
func loadConfig(flags cliFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	if flags.jwksPath != "" {
		cfg.KeySet.Path = flags.jwksPath
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the logger.
func initLogger(cfg *config.Config, stderr io.Writer) (observability.Logger, error) {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return nil, err
	}

	observability.SetGlobalLogger(logger)
	return logger, nil
}
