package main

import (
	"ebpatch/pkg/patcher"
	"ebpatch/pkg/records"
	"ebpatch/pkg/utils"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

const version = "1.3.1"

var cfg struct {
	json     string
	input    string
	output   string
	jsonHelp bool
	verbose  bool
	update   bool
	unsafe   bool
	force    bool
	align    string
	encoding string
}

var (
	consoleOutput = os.Stderr
	logger        = log.NewLogfmtLogger(log.NewSyncWriter(consoleOutput))
)

func main() {
	app := kingpin.New(filepath.Base(os.Args[0]), "Replaces strings without size limits by patching pointers in PS3 EBOOT files.").UsageWriter(os.Stdout)
	app.Version(version)
	app.HelpFlag.Short('h')

	app.Arg("json", "Path to JSON file with the new strings (use --json-help for the format info).").Default("eboot.json").StringVar(&cfg.json)
	app.Arg("input", "Path to input EBOOT.ELF.").Default("EBOOT.ELF").StringVar(&cfg.input)
	app.Arg("output", "Path to output EBOOT.ELF (default: <input>_PATCHED.ELF).").StringVar(&cfg.output)

	app.Flag("json-help", "Show help info about the JSON file format and exit.").Short('j').BoolVar(&cfg.jsonHelp)
	app.Flag("verbose", "Show info about each string entry that is patched.").Short('v').Envar("EBPATCH_VERBOSE").BoolVar(&cfg.verbose)
	app.Flag("update", "Skip adding strings that were added in a previous run (does not check for conflicts).").Short('u').Envar("EBPATCH_UPDATE").BoolVar(&cfg.update)
	app.Flag("unsafe", "Patch strings without checking if their address was found multiple times.").Short('s').Envar("EBPATCH_UNSAFE").BoolVar(&cfg.unsafe)
	app.Flag("align-value", "Alignment of the virtual address given to the empty segment, hex or decimal.").Short('a').Envar("EBPATCH_ALIGN_VALUE").StringVar(&cfg.align)
	app.Flag("encoding", "Encoding of the JSON file and of the strings in the EBOOT.").Short('e').Default(records.DefaultEncoding).Envar("EBPATCH_ENCODING").StringVar(&cfg.encoding)
	app.Flag("force", "Overwrite the output file without asking.").Short('f').Envar("EBPATCH_FORCE").BoolVar(&cfg.force)

	kingpin.MustParse(app.Parse(os.Args[1:]))

	if !cfg.verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	fmt.Fprintf(os.Stdout, "%s v%s\n\n", color.CyanString("Eboot String Patcher"), version)

	if cfg.jsonHelp {
		printJSONHelp()
		return
	}

	if err := run(); err != nil {
		if errors.Is(err, errAborted) {
			fmt.Fprintln(os.Stdout, "Aborting.")
			return
		}
		utils.Fatal(err)
	}
}

func printJSONHelp() {
	fmt.Fprintln(os.Stdout, "Showing JSON format help:")
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, records.Help)
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, "Here's an example:")
	fmt.Fprintln(os.Stdout, records.Example)
}

func run() error {
	align, err := parseAlign(cfg.align)
	if err != nil {
		return err
	}

	output := cfg.output
	if output == "" {
		output = defaultOutput(cfg.input)
	}

	if !fileExists(cfg.json) {
		return errors.Errorf("input JSON file %s does not exist", cfg.json)
	}
	if !fileExists(cfg.input) {
		return errors.Errorf("input EBOOT file %s does not exist", cfg.input)
	}
	if fileExists(output) && !cfg.force {
		if err := confirmOverwrite(stdin, os.Stdout, output); err != nil {
			return err
		}
	}

	level.Info(logger).Log("msg", "reading records", "path", cfg.json, "encoding", cfg.encoding)
	recs, err := records.LoadFile(cfg.json, cfg.encoding)
	if err != nil {
		return err
	}

	level.Info(logger).Log("msg", "reading executable", "path", cfg.input)
	buf, err := os.ReadFile(cfg.input)
	if err != nil {
		return errors.Wrap(err, "reading executable")
	}

	res, err := patcher.Patch(buf, recs, patcher.ContextArgs{
		Update: cfg.update,
		Unsafe: cfg.unsafe,
		Align:  align,
	}, logger)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, res.Buf, 0o644); err != nil {
		return errors.Wrap(err, "writing output")
	}

	level.Info(logger).Log("msg", "wrote output", "path", output, "size", humanize.IBytes(uint64(len(res.Buf))),
		"patched", res.Report.Patched(), "skipped", res.Report.Skipped())
	fmt.Fprintln(os.Stdout, color.GreenString("Finished."))
	return nil
}

// defaultOutput names the output after the input: EBOOT.ELF becomes
// EBOOT_PATCHED.ELF.
func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_PATCHED.ELF"
}

func parseAlign(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid align value %q", s)
	}
	if v == 0 {
		return 0, errors.New("align value must not be zero")
	}
	return v, nil
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
