package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"

	cerrors "github.com/estuary/sql-baseline/go/errors"
	schemagen "github.com/estuary/sql-baseline/go/schema-gen"
	"github.com/jessevdk/go-flags"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	Version   string = "unknown"
	BuildDate string = "unknown"
)

// LogConfig configures handling of application log events.
type LogConfig struct {
	Level  string `long:"level" env:"LEVEL" default:"info" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal" description:"Logging level"`
	Format string `long:"format" env:"FORMAT" default:"text" choice:"json" choice:"text" choice:"color" description:"Logging output format"`
}

func (c LogConfig) apply() error {
	if c.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else if c.Format == "text" {
		log.SetFormatter(&log.TextFormatter{})
	} else if c.Format == "color" {
		log.SetFormatter(&log.TextFormatter{ForceColors: true})
	}

	if lvl, err := log.ParseLevel(c.Level); err != nil {
		return cerrors.NewUserError(err, fmt.Sprintf("unrecognized log level %q", c.Level))
	} else {
		log.SetLevel(lvl)
	}
	return nil
}

// suitesConfig are the options shared by commands which operate on suites.
type suitesConfig struct {
	Config string    `long:"config" short:"c" env:"SQL_BASELINE_CONFIG" required:"true" description:"Path of the YAML suites configuration"`
	Suite  string    `long:"suite" short:"s" description:"Operate only on the named suite"`
	Log    LogConfig `group:"Logging" namespace:"log" env-namespace:"LOG"`
}

// load applies logging options, and loads the config and its feature flags.
func (c suitesConfig) load() ([]suite, map[string]bool, error) {
	if err := c.Log.apply(); err != nil {
		return nil, nil, err
	}

	cfg, err := loadConfig(c.Config)
	if err != nil {
		return nil, nil, cerrors.NewUserError(err, err.Error())
	}
	featureFlags, err := cfg.featureFlags()
	if err != nil {
		return nil, nil, err
	}
	suites, err := cfg.selected(c.Suite)
	if err != nil {
		return nil, nil, cerrors.NewUserError(err, err.Error())
	}

	log.WithFields(log.Fields{
		"config": c.Config,
		"suites": len(suites),
		"flags":  featureFlags,
	}).Debug("loaded suites config")

	return suites, featureFlags, nil
}

type cmdCheck struct {
	suitesConfig

	out io.Writer
}

// Execute verifies each suite's statement log against its fixture.
func (c *cmdCheck) Execute(_ []string) error {
	suites, featureFlags, err := c.load()
	if err != nil {
		return err
	}

	// Suites are checked concurrently, and their output is written in order.
	var outputs = make([]bytes.Buffer, len(suites))
	var errs = make([]error, len(suites))
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, s := range suites {
		group.Go(func() error {
			errs[i] = checkSuite(&outputs[i], s, featureFlags)
			return nil
		})
	}
	_ = group.Wait()

	var failed = new(cerrors.SuiteErr)
	for i, s := range suites {
		if _, err := outputs[i].WriteTo(c.out); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		if errs[i] != nil {
			failed.Err(s.Name, errs[i])
		}
	}
	if failed.Len() != 0 {
		fmt.Fprintln(c.out, failed.Error())
		return cerrors.NewTransparentError(failed)
	}
	return nil
}

type cmdAccept struct {
	suitesConfig
}

// Execute writes each suite's statement log as its fixture.
func (c *cmdAccept) Execute(_ []string) error {
	suites, featureFlags, err := c.load()
	if err != nil {
		return err
	}

	for _, s := range suites {
		changed, err := acceptSuite(s, featureFlags)
		if err != nil {
			return fmt.Errorf("accepting suite %s: %w", s.Name, err)
		}
		log.WithFields(log.Fields{
			"suite":   s.Name,
			"fixture": s.Fixture,
			"changed": changed,
		}).Info("accepted baseline")
	}
	return nil
}

type cmdSchema struct {
	out io.Writer
}

// Execute prints the JSON schema of the suites configuration.
func (c *cmdSchema) Execute(_ []string) error {
	var schema = schemagen.GenerateSchema("SQL Baseline Suites", &config{})
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	_, err = fmt.Fprintln(c.out, string(b))
	return err
}

type versionCmd struct{}

// Execute displays the version and exits.
func (versionCmd) Execute(_ []string) error {
	fmt.Printf("%s - %s\n", Version, BuildDate)
	return nil
}

func addCmd(to interface {
	AddCommand(string, string, string, interface{}) (*flags.Command, error)
}, a, b, c string, iface interface{}) *flags.Command {
	var cmd, err = to.AddCommand(a, b, c, iface)
	if err != nil {
		panic(err)
	}
	return cmd
}

func newParser(out io.Writer) *flags.Parser {
	var parser = flags.NewParser(nil, flags.HelpFlag|flags.PassDoubleDash)

	_ = addCmd(parser.Command, "check", "Verify suites against their baselines",
		"Compare the recorded statement log of each suite with its baseline fixture, printing a diff of every suite which differs", &cmdCheck{out: out})
	_ = addCmd(parser.Command, "accept", "Accept recorded statements as baselines",
		"Write the recorded statement log of each suite as its baseline fixture", &cmdAccept{})
	_ = addCmd(parser.Command, "schema", "Print the config schema",
		"Print the JSON schema of the suites configuration", &cmdSchema{out: out})
	_ = addCmd(parser.Command, "version", "version",
		"Print version", &versionCmd{})

	return parser
}

func main() {
	var parser = newParser(os.Stdout)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				fmt.Println(flagsErr.Message)
				return
			}
			cerrors.HandleFinalError(cerrors.NewUserError(err, flagsErr.Message))
		}
		cerrors.HandleFinalError(err)
	}
}
