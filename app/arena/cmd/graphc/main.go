// graphc 将编辑格式的行为图编译为 .cgraph 二进制包，也可在各格式之间转换
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
	"github.com/lk2023060901/combatai/pkg/checksum"
	"github.com/lk2023060901/combatai/pkg/compress"
	"github.com/lk2023060901/combatai/pkg/logger"
	"github.com/spf13/pflag"
)

type options struct {
	out     string
	bundle  graph.BundleOptions
	strict  bool
	verbose bool
}

func parse(args []string, stderr io.Writer) (*options, []string, error) {
	o := &options{bundle: graph.DefaultBundleOptions()}
	set := pflag.NewFlagSet("graphc", pflag.ContinueOnError)
	set.SetOutput(stderr)
	set.StringVarP(&o.out, "out", "o", "", "output path (single input only); defaults to <input>"+graph.BundleExt)
	set.StringVar((*string)(&o.bundle.Compress), "compress", string(o.bundle.Compress), "none | snappy | zstd | lz4")
	set.StringVar((*string)(&o.bundle.Checksum), "checksum", string(o.bundle.Checksum), "crc32 | crc32c | xxhash")
	set.IntVar(&o.bundle.MinCompressBytes, "min-compress", o.bundle.MinCompressBytes, "payloads below this size are stored raw")
	set.BoolVar(&o.strict, "strict", false, "fail when a graph does not validate")
	set.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	if err := set.Parse(args); err != nil {
		return nil, nil, err
	}
	inputs := set.Args()
	if len(inputs) == 0 {
		return nil, nil, errors.New("graphc: no input files")
	}
	if o.out != "" && len(inputs) > 1 {
		return nil, nil, errors.New("graphc: --out requires a single input")
	}
	return o, inputs, nil
}

func outputPath(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + graph.BundleExt
}

func compile(o *options, in string, l logger.Logger) error {
	c, err := graph.LoadFile(in)
	if err != nil {
		return err
	}
	if err := graph.NewIndex(c, l).Validate(); err != nil {
		if o.strict {
			return errors.Wrapf(err, "graphc: %s", in)
		}
		l.Warn("graph does not validate", "input", in, "error", err)
	}

	out := o.out
	if out == "" {
		out = outputPath(in)
	}
	if !strings.EqualFold(filepath.Ext(out), graph.BundleExt) {
		return graph.SaveFile(out, c)
	}
	data, err := graph.EncodeBundle(c, o.bundle)
	if err != nil {
		return err
	}
	if err := graph.WriteFile(out, data); err != nil {
		return err
	}
	l.Info("graph compiled",
		"input", in,
		"output", out,
		"bytes", len(data),
		"compress", o.bundle.Compress,
		"checksum", o.bundle.Checksum,
	)
	return nil
}

func run(args []string, stderr io.Writer) error {
	o, inputs, err := parse(args, stderr)
	if err != nil {
		return err
	}
	if _, err := compress.New(o.bundle.Compress); err != nil {
		return err
	}
	if _, err := checksum.New(o.bundle.Checksum); err != nil {
		return err
	}

	cfg := logger.DefaultConfig()
	cfg.EnableConsole = true
	cfg.EnableFile = false
	if o.verbose {
		cfg.Level = logger.DebugLevel
	}
	l, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	var errs []error
	for _, in := range inputs {
		if err := compile(o, in, l.Named("graphc")); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "graphc: %v\n", err)
		os.Exit(1)
	}
}
