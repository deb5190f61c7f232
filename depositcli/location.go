// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

// Package depositcli locates and invokes the external staking deposit cli.
//
// The cli is resolved in a fixed order of preference: a proxy executable bundled with the
// packaged application, a single-file proxy in the local build output, and finally the
// system python interpreter running the vendored proxy script. The interpreter form
// installs its dependencies into a private packages directory on first use.
package depositcli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/lockfile"
	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/app/z"
)

// Kind identifies which form of the deposit cli a Location runs.
type Kind int

const (
	KindUnknown Kind = iota
	KindBundled
	KindSingleFile
	KindInterpreter
)

func (k Kind) String() string {
	switch k {
	case KindBundled:
		return "bundled"
	case KindSingleFile:
		return "single_file"
	case KindInterpreter:
		return "interpreter"
	default:
		return "unknown"
	}
}

// Location is a resolved, runnable form of the deposit cli. It is immutable once constructed.
type Location struct {
	Kind Kind
	// Executable is the proxy binary, or the python interpreter for KindInterpreter.
	Executable string
	// ScriptPath is the proxy script passed to the interpreter, empty otherwise.
	ScriptPath string
	// WordListDir contains the BIP-39 word lists, passed to subcommands that need them.
	WordListDir string
	// Env contains extra environment variables set when running this location.
	Env map[string]string
}

// Argv returns the arguments passed to Executable for the request.
// Flags with empty values are omitted, the word list directory is inserted after the flags if requested.
func (l Location) Argv(req Request) []string {
	var argv []string
	if l.Kind == KindInterpreter {
		argv = append(argv, l.ScriptPath)
	}

	argv = append(argv, string(req.Subcommand))

	for _, flag := range req.Flags {
		if flag.Value == "" {
			continue
		}

		argv = append(argv, flag.Name, flag.Value)
	}

	if req.WordList {
		argv = append(argv, l.WordListDir)
	}

	return append(argv, req.Args...)
}

// Environ returns base extended with the location's environment, or nil to inherit if there is none.
func (l Location) Environ(base []string) []string {
	if len(l.Env) == 0 {
		return nil
	}

	keys := make([]string, 0, len(l.Env))
	for k := range l.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	resp := append([]string(nil), base...)
	for _, k := range keys {
		resp = append(resp, k+"="+l.Env[k])
	}

	return resp
}

// NewLocator returns a Locator for the layout. The runner executes the interpreter bootstrap.
func NewLocator(conf Config, runner Runner) *Locator {
	return &Locator{
		conf:     conf,
		runner:   runner,
		exists:   pathExists,
		lookPath: exec.LookPath,
	}
}

// Locator resolves the deposit cli. It does not cache, every call re-examines the filesystem.
type Locator struct {
	conf     Config
	runner   Runner
	exists   func(string) bool
	lookPath func(string) (string, error)
}

// Locate returns the most preferred runnable form of the deposit cli.
// It returns a ResolutionError if none is available or the interpreter bootstrap fails.
func (l *Locator) Locate(ctx context.Context) (Location, error) {
	ctx = log.WithTopic(ctx, "depositcli")

	if path := l.conf.bundledPath(); l.exists(path) {
		log.Debug(ctx, "Using bundled deposit cli", z.Str("path", path))

		return Location{
			Kind:        KindBundled,
			Executable:  path,
			WordListDir: l.conf.bundledWordLists(),
		}, nil
	}

	if path := l.conf.singleFilePath(); l.exists(path) {
		log.Debug(ctx, "Using single-file deposit cli", z.Str("path", path))

		return Location{
			Kind:        KindSingleFile,
			Executable:  path,
			WordListDir: l.conf.singleFileWordLists(),
		}, nil
	}

	python, err := l.lookPath(l.conf.interpreter())
	if err != nil {
		return Location{}, &ResolutionError{
			Reason: fmt.Sprintf("no bundled or single-file proxy and %s not found", l.conf.interpreter()),
			Err:    err,
		}
	}

	if err := l.bootstrap(ctx, python); err != nil {
		return Location{}, err
	}

	sysPath, err := l.sysPath(ctx, python)
	if err != nil {
		return Location{}, err
	}

	delim := l.conf.pathDelimiter()
	pythonPath := strings.Join([]string{l.conf.PackagesDir, l.conf.VendorDir, sysPath}, delim)

	log.Debug(ctx, "Using python deposit cli", z.Str("python", python))

	return Location{
		Kind:        KindInterpreter,
		Executable:  python,
		ScriptPath:  l.conf.scriptPath(),
		WordListDir: l.conf.vendorWordLists(),
		Env:         map[string]string{"PYTHONPATH": pythonPath},
	}, nil
}

// bootstrap installs the vendored requirements into the packages directory.
// It is skipped if the packages directory already exists, regardless of its contents.
// A lock file next to the packages directory excludes concurrent installs by other processes,
// it is only taken when an install is required.
func (l *Locator) bootstrap(ctx context.Context, python string) error {
	if l.exists(l.conf.PackagesDir) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.conf.PackagesDir), 0o755); err != nil {
		return &ResolutionError{Reason: "create packages parent dir", Err: errors.Wrap(err, "mkdir")}
	}

	release, err := lockfile.Acquire(l.conf.PackagesDir+".lock", "pip install")
	if err != nil {
		return &ResolutionError{Reason: "lock packages dir", Err: err}
	}
	defer func() {
		if relErr := release(); relErr != nil {
			log.Warn(ctx, "Failed to release packages lock", relErr)
		}
	}()

	// Another process may have installed while we waited for the lock.
	if l.exists(l.conf.PackagesDir) {
		return nil
	}

	log.Info(ctx, "Installing deposit cli python dependencies", z.Str("target", l.conf.PackagesDir))

	if err := os.MkdirAll(l.conf.PackagesDir, 0o755); err != nil {
		return &ResolutionError{Reason: "create packages dir", Err: errors.Wrap(err, "mkdir")}
	}

	res, err := l.runner.Run(ctx, Command{
		Path: python,
		Args: []string{"-m", "pip", "install", "-r", l.conf.requirementsPath(), "--target", l.conf.PackagesDir},
	})
	if err != nil {
		return &ResolutionError{Reason: "install python dependencies", Err: err}
	} else if !res.Success() {
		return &ResolutionError{
			Reason: "install python dependencies",
			Err:    errors.New("pip install failed", z.Int("exit_code", res.ExitCode), z.Str("stderr", res.Stderr)),
		}
	}

	return nil
}

// sysPath returns the interpreter's default module search path joined with the platform delimiter.
func (l *Locator) sysPath(ctx context.Context, python string) (string, error) {
	script := fmt.Sprintf("import sys;print('%s'.join(sys.path))", l.conf.pathDelimiter())

	res, err := l.runner.Run(ctx, Command{Path: python, Args: []string{"-c", script}})
	if err != nil {
		return "", &ResolutionError{Reason: "query python sys.path", Err: err}
	} else if !res.Success() {
		return "", &ResolutionError{
			Reason: "query python sys.path",
			Err:    errors.New("python exited with error", z.Int("exit_code", res.ExitCode), z.Str("stderr", res.Stderr)),
		}
	}

	return strings.TrimSpace(res.Stdout), nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
