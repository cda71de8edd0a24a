package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	sk "github.com/reoring/shapekit"
	"github.com/reoring/shapekit/infer"
	"github.com/reoring/shapekit/source"
)

// errInvalid marks input that failed validation; issues are already printed.
var errInvalid = errors.New("input is invalid")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "infer":
		err = inferCmd(os.Args[2:], os.Stdout, os.Stderr)
	case "check":
		err = checkCmd(os.Args[2:], os.Stdin, os.Stdout, os.Stderr)
	case "schema":
		err = schemaCmd(os.Args[2:], os.Stdout, os.Stderr)
	default:
		usage()
		os.Exit(2)
	}
	if errors.Is(err, errInvalid) {
		os.Exit(1)
	}
	if err != nil {
		fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "shapekit CLI\n\nUsage:\n  shapekit infer -sample a.json[,b.json] [-name Root]\n  shapekit check -sample ref.json -in data.json [-config cfg.yaml] [-nonstrict] [-sum-dict key] [-dupkeys] [-failfast] [-dump] [-v]\n  shapekit schema -sample ref.json [-config cfg.yaml]\n\nNotes:\n  - Inputs ending in .yaml/.yml are read as YAML, everything else as JSON; '-' reads stdin.\n  - infer prints a config skeleton with the overrides needed for non-identifier keys.")
}

type commonFlags struct {
	samples string
	name    string
	config  string
	verbose bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.samples, "sample", "", "comma-separated sample files to infer the shape from")
	fs.StringVar(&c.name, "name", "root", "name of the root record")
	fs.StringVar(&c.config, "config", "", "YAML config file (overrides, flags)")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
}

func (c *commonFlags) logf(stderr io.Writer) func(string, ...any) {
	return func(format string, a ...any) {
		if c.verbose {
			fmt.Fprintf(stderr, format+"\n", a...)
		}
	}
}

// describe infers the description from the samples and merges the config
// file on top of the inferred overrides.
func (c *commonFlags) describe(stdin io.Reader, logf func(string, ...any), extra ...sk.Option) (sk.Desc, *sk.Config, error) {
	paths := splitCSV(c.samples)
	if len(paths) == 0 {
		return nil, nil, errors.New("-sample is required")
	}
	raws := make([]any, 0, len(paths))
	for _, p := range paths {
		raw, err := readTree(p, stdin, false)
		if err != nil {
			return nil, nil, err
		}
		logf("read sample %s", p)
		raws = append(raws, raw)
	}
	d, inferred, err := infer.FromSamples(c.name, raws...)
	if err != nil {
		return nil, nil, err
	}
	cfg := inferred
	if c.config != "" {
		fc, err := loadConfig(c.config)
		if err != nil {
			return nil, nil, err
		}
		fileCfg, err := fc.config(d)
		if err != nil {
			return nil, nil, err
		}
		logf("loaded config %s", c.config)
		cfg = sk.Merge(inferred, fileCfg)
	}
	return d, cfg.With(extra...), nil
}

func inferCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c commonFlags
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, cfg, err := c.describe(os.Stdin, c.logf(stderr))
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(configFor(d, cfg))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "# %s\n", d)
	_, err = stdout.Write(b)
	return err
}

func schemaCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c commonFlags
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, cfg, err := c.describe(os.Stdin, c.logf(stderr))
	if err != nil {
		return err
	}
	codec, err := sk.Apply(cfg, d)
	if err != nil {
		return err
	}
	s, err := codec.JSONSchema()
	if err != nil {
		return err
	}
	b, err := source.MarshalIndent(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(b))
	return err
}

func checkCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c commonFlags
	var in, sumDict string
	var nonStrict, dump, failFast, dupKeys bool
	c.register(fs)
	fs.StringVar(&in, "in", "-", "file to validate ('-' for stdin)")
	fs.BoolVar(&nonStrict, "nonstrict", false, "accept numeric and boolean strings")
	fs.StringVar(&sumDict, "sum-dict", "", "encode sum types as mappings with this tag key")
	fs.BoolVar(&dump, "dump", false, "dump the decoded value")
	fs.BoolVar(&failFast, "failfast", false, "stop at the first issue")
	fs.BoolVar(&dupKeys, "dupkeys", false, "reject JSON objects that repeat a key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logf := c.logf(stderr)

	var extra []sk.Option
	if nonStrict {
		extra = append(extra, sk.NonStrictPrimitives())
	}
	if sumDict != "" {
		extra = append(extra, sk.SumTypeDict(sumDict))
	}
	d, cfg, err := c.describe(stdin, logf, extra...)
	if err != nil {
		return err
	}
	codec, err := sk.Apply(cfg, d)
	if err != nil {
		return err
	}
	logf("compiled %s", d)

	raw, err := readTree(in, stdin, dupKeys)
	if err != nil {
		return err
	}
	ctx := sk.WithFailFast(context.Background(), failFast)
	v, err := codec.Decode(ctx, raw)
	if iss, ok := sk.AsIssues(err); ok {
		for _, line := range iss.Lines() {
			fmt.Fprintln(stdout, line)
		}
		return errInvalid
	}
	if err != nil {
		return err
	}
	if dump {
		spew.Fdump(stdout, v)
	}
	if _, err := codec.Encode(ctx, v); err != nil {
		return fmt.Errorf("round trip: %w", err)
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

func readTree(path string, stdin io.Reader, noDup bool) (any, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return source.YAML(b)
	}
	if noDup {
		return source.JSONNoDuplicates(b)
	}
	return source.JSON(b)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
