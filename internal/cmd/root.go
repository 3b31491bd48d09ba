// Package cmd wires rpminspect's getopt-style CLI onto the
// acquisition/peer-matching/inspection pipeline. Grounded on the teacher's
// own root.go shape — a struct wrapping *cobra.Command plus an injectable
// exit func, Execute(args) delegating straight to cobra.Execute(). The root
// command carries every inspection flag itself and runs the pipeline; the
// only subcommands are the init, docs, jsonschema and completion helpers.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpminspect/rpminspect/build"
	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/inspect"
	"github.com/rpminspect/rpminspect/output"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// exitError carries the process exit code a failed run should report,
// distinguishing §6's "2 = program error" from a plain cobra usage error
// (which cobra itself already reports via a non-zero exit).
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type rootCmd struct {
	cmd     *cobra.Command
	exit    func(int)
	version string

	configFile   string
	profile      string
	enableList   string
	disableList  string
	arches       string
	release      string
	noRebase     bool
	outFile      string
	format       string
	threshold    string
	suppress     string
	listOnly     bool
	workdir      string
	fetchOnly    bool
	keep         bool
	debug        bool
	dumpConfig   bool
	verbose      bool
	showVersion  bool
}

// NewRootCommand builds the cobra command tree for version, suitable for
// handing to fang.Execute (see cmd/rpminspect/main.go) or to cobra's own
// Execute directly in tests. The command's RunE itself calls exit(0/1)
// on a successful run per §6's exit-code table; a returned error means
// exit code 2 (program or usage error), which the caller derives via
// ExitCodeForError.
func NewRootCommand(version string, exit func(int)) *cobra.Command {
	return newRootCmd(version, exit).cmd
}

// ExitCodeForError extracts the process exit code an *exitError carries,
// defaulting to 2 (the generic "program error" code from §6) for any
// other error, including cobra's own usage/flag-parsing errors.
func ExitCodeForError(err error) int {
	var ee *exitError
	if asExitError(err, &ee) {
		return ee.code
	}
	return 2
}

// Execute builds and runs the root command against args directly,
// without fang's styling layer; kept for callers (tests, completion
// generation) that want the plain cobra error path.
func Execute(version string, exit func(int), args []string) {
	root := newRootCmd(version, exit)
	root.cmd.SetArgs(args)
	if err := root.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exit(ExitCodeForError(err))
	}
}

func asExitError(err error, target **exitError) bool {
	for err != nil {
		if ee, ok := err.(*exitError); ok {
			*target = ee
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func newRootCmd(version string, exit func(int)) *rootCmd {
	root := &rootCmd{exit: exit, version: version}

	cmd := &cobra.Command{
		Use:           "rpminspect [before] [after]",
		Short:         "Compares RPM packaging artifacts and gates regressions",
		Long:          "rpminspect compares a prior build against a candidate build of the same RPM-packaged software and emits a verdict about whether the candidate is suitable to ship.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(2),
		RunE: func(cc *cobra.Command, args []string) error {
			return root.run(cc, args)
		},
	}

	cmd.Flags().StringVarP(&root.configFile, "config", "c", "", "configuration file to use")
	cmd.Flags().StringVarP(&root.profile, "profile", "p", "", "named profile overlay to apply")
	cmd.Flags().StringVarP(&root.enableList, "tests", "T", "", "comma-separated inspection names to enable (ALL selects every inspection)")
	cmd.Flags().StringVarP(&root.disableList, "exclude", "E", "", "comma-separated inspection names to disable")
	cmd.Flags().StringVarP(&root.arches, "arches", "a", "", "comma-separated architectures to restrict to")
	cmd.Flags().StringVarP(&root.release, "release", "r", "", "override the derived product release string")
	cmd.Flags().BoolVarP(&root.noRebase, "no-rebase", "n", false, "disable rebase detection")
	cmd.Flags().StringVarP(&root.outFile, "output", "o", "", "write formatted output to this file (default stdout)")
	cmd.Flags().StringVarP(&root.format, "format", "F", "text", "output format: text|json|xunit|summary")
	cmd.Flags().StringVarP(&root.threshold, "threshold", "t", "VERIFY", "severity threshold that fails the run: OK|INFO|VERIFY|BAD")
	cmd.Flags().StringVarP(&root.suppress, "suppress", "s", "", "suppress displaying results below this severity")
	cmd.Flags().BoolVarP(&root.listOnly, "list", "l", false, "list inspections and formats, then exit")
	cmd.Flags().StringVarP(&root.workdir, "workdir", "w", "", "workdir (default /var/tmp/rpminspect)")
	cmd.Flags().BoolVarP(&root.fetchOnly, "fetch-only", "f", false, "fetch builds only, implies -k")
	cmd.Flags().BoolVarP(&root.keep, "keep", "k", false, "keep the workdir on exit")
	cmd.Flags().BoolVarP(&root.debug, "debug", "d", false, "debug trace on stderr")
	cmd.Flags().BoolVarP(&root.dumpConfig, "dump-config", "D", false, "dump effective configuration and exit")
	cmd.Flags().BoolVarP(&root.verbose, "verbose", "v", false, "verbose progress")
	cmd.Flags().BoolVarP(&root.showVersion, "version", "V", false, "print version and exit")

	cmd.AddCommand(
		newInitCmd().cmd,
		newDocsCmd().cmd,
		newSchemaCmd().cmd,
		newCompletionCmd().cmd,
	)

	root.cmd = cmd
	return root
}

func (c *rootCmd) run(cc *cobra.Command, args []string) error {
	out := cc.OutOrStdout()

	if c.showVersion {
		fmt.Fprintln(out, "rpminspect", c.version)
		return nil
	}

	if c.listOnly {
		c.printList(out)
		return nil
	}

	if c.enableList != "" && c.disableList != "" {
		return &exitError{2, fmt.Errorf("-T and -E are mutually exclusive")}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return &exitError{2, err}
	}

	if c.dumpConfig {
		return c.dumpEffectiveConfig(out, cfg)
	}

	if _, err := output.ParseFormat(c.format); err != nil {
		return &exitError{2, err}
	}
	threshold, err := results.ParseSeverity(c.threshold)
	if err != nil {
		return &exitError{2, err}
	}
	cfg.Threshold = threshold
	if c.suppress != "" {
		suppress, err := results.ParseSeverity(c.suppress)
		if err != nil {
			return &exitError{2, err}
		}
		cfg.SuppressBelow = suppress
	}
	if c.noRebase {
		cfg.RebaseDetection = false
	}
	if c.workdir != "" {
		cfg.Workdir = c.workdir
	} else if cfg.Workdir == "" {
		cfg.Workdir = filepath.Join(os.TempDir(), "rpminspect")
	}

	var beforeSpec, afterSpec string
	switch len(args) {
	case 2:
		beforeSpec, afterSpec = args[0], args[1]
	case 1:
		afterSpec = args[0]
	default:
		return &exitError{2, fmt.Errorf("rpminspect requires at least an after build argument")}
	}

	arches := splitList(c.arches)

	r, err := c.runPipeline(cfg, beforeSpec, afterSpec, arches)
	if err != nil {
		return &exitError{2, err}
	}

	if c.fetchOnly {
		return nil
	}

	if err := c.writeResults(r); err != nil {
		return &exitError{2, err}
	}

	c.exit(r.ExitCode())
	return nil
}

func (c *rootCmd) loadConfig() (*config.RunConfig, error) {
	var paths []string
	if c.configFile != "" {
		paths = []string{c.configFile}
	} else {
		paths = []string{"/etc/rpminspect.yaml"}
	}
	cfg, err := config.LoadFiles(paths, "/usr/share/rpminspect/profiles", c.profile)
	if err != nil && c.configFile != "" {
		return nil, err
	}
	if err != nil {
		if cfg, err = config.LoadFiles(nil, "", ""); err != nil {
			return nil, err
		}
	}
	if cfg.EnabledInspections == nil {
		cfg.EnabledInspections = map[string]bool{}
	}
	if c.enableList != "" {
		enabled := splitList(c.enableList)
		all := len(enabled) == 1 && enabled[0] == "ALL"
		for _, name := range inspect.Names() {
			cfg.EnabledInspections[name] = all || contains(enabled, name)
		}
	}
	if c.disableList != "" {
		for _, name := range splitList(c.disableList) {
			cfg.EnabledInspections[name] = false
		}
	}
	return cfg, nil
}

func (c *rootCmd) runPipeline(cfg *config.RunConfig, beforeSpec, afterSpec string, arches []string) (*run.Run, error) {
	runid := strconv.FormatInt(int64(os.Getpid()), 10)
	worksubdir := filepath.Join(cfg.Workdir, runid)
	if !c.keep && !c.fetchOnly {
		defer os.RemoveAll(worksubdir) //nolint:errcheck
	}

	var beforeAcquired, afterAcquired []build.Acquired
	var diagnostics []results.Record

	if beforeSpec != "" {
		acq, diags, err := build.Acquire(beforeSpec, build.Before, worksubdir, arches, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("acquire before build: %w", err)
		}
		beforeAcquired = acq
		diagnostics = append(diagnostics, diags...)
	}

	afterAcq, diags, err := build.Acquire(afterSpec, build.After, worksubdir, arches, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("acquire after build: %w", err)
	}
	afterAcquired = afterAcq
	diagnostics = append(diagnostics, diags...)

	peerList := peers.Match(build.ToBuildInputs(beforeAcquired), build.ToBuildInputs(afterAcquired))

	productRelease, err := run.DeriveProductRelease(c.release, primaryAcquiredHeader(beforeAcquired), primaryAcquiredHeader(afterAcquired), cfg.Products, cfg.FavorRelease)
	if err != nil {
		return nil, err
	}

	r := run.New(cfg, cfg.Workdir, worksubdir, beforeSpec, afterSpec, productRelease, peerList, arches)
	for _, d := range diagnostics {
		r.Results.Add(d)
	}

	inspect.Dispatch(r)
	return r, nil
}

func (c *rootCmd) writeResults(r *run.Run) error {
	format, err := output.ParseFormat(c.format)
	if err != nil {
		return err
	}

	records := r.Results.Records()
	if r.Config.SuppressBelow > 0 {
		filtered := make([]results.Record, 0, len(records))
		for _, rec := range records {
			if rec.Severity >= r.Config.SuppressBelow {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	var w io.Writer = os.Stdout
	if c.outFile != "" {
		f, err := os.Create(c.outFile) //nolint:gosec
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	return output.Write(w, format, records)
}

func (c *rootCmd) dumpEffectiveConfig(out io.Writer, cfg *config.RunConfig) error {
	fmt.Fprintf(out, "workdir: %s\n", cfg.Workdir)
	fmt.Fprintf(out, "vendor_data_dir: %s\n", cfg.VendorDataDir)
	fmt.Fprintf(out, "threshold: %s\n", cfg.Threshold)
	names := make([]string, 0, len(cfg.EnabledInspections))
	for name, enabled := range cfg.EnabledInspections {
		if !enabled {
			names = append(names, name+"=off")
		}
	}
	fmt.Fprintf(out, "disabled inspections: %s\n", strings.Join(names, ", "))
	return nil
}

func (c *rootCmd) printList(out io.Writer) {
	fmt.Fprintln(out, "inspections:")
	for _, name := range inspect.Names() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	fmt.Fprintln(out, "formats:")
	fmt.Fprintln(out, "  text\n  json\n  xunit\n  summary")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
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

// primaryAcquiredHeader picks the source package header when present,
// else the first subpackage by acquisition order, mirroring
// run.Run.PrimaryHeader's tie-break for the side not yet wrapped in a Run.
func primaryAcquiredHeader(acquired []build.Acquired) *header.Header {
	var fallback *header.Header
	for _, a := range acquired {
		if a.Header.IsSource() {
			return a.Header
		}
		if fallback == nil {
			fallback = a.Header
		}
	}
	return fallback
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
