// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package depositcli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/lockfile"
)

// fakeRunner records commands and returns results from fn.
type fakeRunner struct {
	mu   sync.Mutex
	cmds []Command
	fn   func(Command) (Result, error)
}

func (r *fakeRunner) Run(_ context.Context, cmd Command) (Result, error) {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmd)
	r.mu.Unlock()

	if r.fn == nil {
		return Result{}, nil
	}

	return r.fn(cmd)
}

func (r *fakeRunner) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Command(nil), r.cmds...)
}

// pythonRunner answers the sys.path query and succeeds for everything else.
func pythonRunner() *fakeRunner {
	return &fakeRunner{fn: func(cmd Command) (Result, error) {
		if len(cmd.Args) > 0 && cmd.Args[0] == "-c" {
			return Result{Stdout: "/usr/lib/python3.12:/usr/lib/python3/dist-packages\n"}, nil
		}

		return Result{}, nil
	}}
}

func testConfig(t *testing.T) Config {
	t.Helper()

	root := t.TempDir()

	return Config{
		ResourcesDir: filepath.Join(root, "app", "resources"),
		BuildDir:     filepath.Join(root, "build"),
		VendorDir:    filepath.Join(root, "vendor"),
		ScriptsDir:   filepath.Join(root, "scripts"),
		PackagesDir:  filepath.Join(root, "packages"),
		GOOS:         "linux",
	}
}

func TestLocateOrder(t *testing.T) {
	tests := []struct {
		bundled    bool
		singleFile bool
		python     bool
		expect     Kind
	}{
		{bundled: true, singleFile: true, python: true, expect: KindBundled},
		{bundled: true, singleFile: true, python: false, expect: KindBundled},
		{bundled: true, singleFile: false, python: true, expect: KindBundled},
		{bundled: true, singleFile: false, python: false, expect: KindBundled},
		{bundled: false, singleFile: true, python: true, expect: KindSingleFile},
		{bundled: false, singleFile: true, python: false, expect: KindSingleFile},
		{bundled: false, singleFile: false, python: true, expect: KindInterpreter},
		{bundled: false, singleFile: false, python: false, expect: KindUnknown},
	}

	for _, test := range tests {
		name := strings.Join([]string{
			boolName("bundled", test.bundled),
			boolName("single_file", test.singleFile),
			boolName("python", test.python),
		}, "_")

		t.Run(name, func(t *testing.T) {
			conf := testConfig(t)
			runner := pythonRunner()
			locator := NewLocator(conf, runner)
			locator.exists = func(path string) bool {
				switch path {
				case conf.bundledPath():
					return test.bundled
				case conf.singleFilePath():
					return test.singleFile
				case conf.PackagesDir:
					return true
				default:
					return false
				}
			}
			locator.lookPath = func(file string) (string, error) {
				require.Equal(t, "python3", file)
				if !test.python {
					return "", errors.New("not found")
				}

				return "/usr/bin/python3", nil
			}

			loc, err := locator.Locate(context.Background())
			if test.expect == KindUnknown {
				var resErr *ResolutionError
				require.ErrorAs(t, err, &resErr)
				require.Empty(t, runner.Commands())

				return
			}

			require.NoError(t, err)
			require.Equal(t, test.expect, loc.Kind)

			switch test.expect {
			case KindBundled:
				require.Equal(t, conf.bundledPath(), loc.Executable)
				require.Equal(t, filepath.Join(filepath.Dir(conf.ResourcesDir), "build", "word_lists"), loc.WordListDir)
				require.Empty(t, loc.Env)
				require.Empty(t, runner.Commands())
			case KindSingleFile:
				require.Equal(t, filepath.Join(conf.BuildDir, "bin", "stakingdeposit_proxy"), loc.Executable)
				require.Equal(t, filepath.Join(conf.BuildDir, "word_lists"), loc.WordListDir)
				require.Empty(t, runner.Commands())
			case KindInterpreter:
				require.Equal(t, "/usr/bin/python3", loc.Executable)
				require.Equal(t, filepath.Join(conf.ScriptsDir, "stakingdeposit_proxy.py"), loc.ScriptPath)
				require.Equal(t,
					conf.PackagesDir+":"+conf.VendorDir+":/usr/lib/python3.12:/usr/lib/python3/dist-packages",
					loc.Env["PYTHONPATH"])
			}
		})
	}
}

func boolName(name string, ok bool) string {
	if ok {
		return name
	}

	return "no_" + name
}

func TestBootstrapInstallsOnce(t *testing.T) {
	conf := testConfig(t)
	runner := pythonRunner()
	locator := NewLocator(conf, runner)
	locator.lookPath = func(string) (string, error) { return "/usr/bin/python3", nil }

	_, err := locator.Locate(context.Background())
	require.NoError(t, err)

	cmds := runner.Commands()
	require.Len(t, cmds, 2)
	require.Equal(t, []string{
		"-m", "pip", "install",
		"-r", filepath.Join(conf.VendorDir, "requirements.txt"),
		"--target", conf.PackagesDir,
	}, cmds[0].Args)
	require.DirExists(t, conf.PackagesDir)

	// Second resolution skips the install since the packages dir exists.
	_, err = locator.Locate(context.Background())
	require.NoError(t, err)

	cmds = runner.Commands()
	require.Len(t, cmds, 3)
	require.Equal(t, "-c", cmds[2].Args[0])
}

func TestBootstrapFailure(t *testing.T) {
	conf := testConfig(t)
	runner := &fakeRunner{fn: func(Command) (Result, error) {
		return Result{ExitCode: 1, Stderr: "no matching distribution"}, nil
	}}
	locator := NewLocator(conf, runner)
	locator.lookPath = func(string) (string, error) { return "/usr/bin/python3", nil }

	_, err := locator.Locate(context.Background())
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, "install python dependencies", resErr.Reason)
	require.Len(t, runner.Commands(), 1)

	// A failed install leaves the packages dir behind, so it is not attempted again.
	_, err = os.Stat(conf.PackagesDir)
	require.NoError(t, err)
}

func TestBootstrapLocked(t *testing.T) {
	conf := testConfig(t)

	release, err := lockfile.Acquire(conf.PackagesDir+".lock", "other wagyu")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, release())
	}()

	runner := pythonRunner()
	locator := NewLocator(conf, runner)
	locator.lookPath = func(string) (string, error) { return "/usr/bin/python3", nil }

	_, err = locator.Locate(context.Background())
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, "lock packages dir", resErr.Reason)
	require.Empty(t, runner.Commands())
	require.NoDirExists(t, conf.PackagesDir)
}

func TestBootstrapSkipsLockWhenInstalled(t *testing.T) {
	conf := testConfig(t)
	require.NoError(t, os.MkdirAll(conf.PackagesDir, 0o755))

	release, err := lockfile.Acquire(conf.PackagesDir+".lock", "other wagyu")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, release())
	}()

	runner := pythonRunner()
	locator := NewLocator(conf, runner)
	locator.lookPath = func(string) (string, error) { return "/usr/bin/python3", nil }

	loc, err := locator.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, KindInterpreter, loc.Kind)

	cmds := runner.Commands()
	require.Len(t, cmds, 1)
	require.Equal(t, "-c", cmds[0].Args[0])
}

func TestBootstrapSkipsCorruptLockWhenInstalled(t *testing.T) {
	conf := testConfig(t)
	require.NoError(t, os.MkdirAll(conf.PackagesDir, 0o755))
	require.NoError(t, os.WriteFile(conf.PackagesDir+".lock", []byte("not json"), 0o644))

	locator := NewLocator(conf, pythonRunner())
	locator.lookPath = func(string) (string, error) { return "/usr/bin/python3", nil }

	_, err := locator.Locate(context.Background())
	require.NoError(t, err)
}

func TestInterpreterWindows(t *testing.T) {
	conf := testConfig(t)
	conf.GOOS = "windows"
	require.NoError(t, os.MkdirAll(conf.PackagesDir, 0o755))

	runner := &fakeRunner{fn: func(cmd Command) (Result, error) {
		require.Equal(t, "import sys;print(';'.join(sys.path))", cmd.Args[1])
		return Result{Stdout: `C:\Python312\Lib`}, nil
	}}
	locator := NewLocator(conf, runner)
	locator.lookPath = func(file string) (string, error) {
		require.Equal(t, "python", file)
		return `C:\Python312\python.exe`, nil
	}

	loc, err := locator.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, conf.PackagesDir+";"+conf.VendorDir+`;C:\Python312\Lib`, loc.Env["PYTHONPATH"])
}

func TestSingleFileWindowsSuffix(t *testing.T) {
	conf := testConfig(t)
	conf.GOOS = "windows"

	bin := filepath.Join(conf.BuildDir, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	// Existence is all that is checked, an empty file counts as present.
	require.NoError(t, os.WriteFile(filepath.Join(bin, "stakingdeposit_proxy.exe"), nil, 0o644))

	loc, err := NewLocator(conf, &fakeRunner{}).Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, KindSingleFile, loc.Kind)
	require.Equal(t, filepath.Join(bin, "stakingdeposit_proxy.exe"), loc.Executable)
}

func TestArgv(t *testing.T) {
	req := Request{
		Subcommand: SubcommandGenerateKeys,
		Flags:      []Flag{{Name: "--a", Value: "1"}, {Name: "--b"}},
		WordList:   true,
		Args:       []string{"x", "y"},
	}

	exe := Location{Kind: KindBundled, Executable: "proxy", WordListDir: "/wl"}
	require.Equal(t, []string{"generate_keys", "--a", "1", "/wl", "x", "y"}, exe.Argv(req))

	py := Location{Kind: KindInterpreter, Executable: "python3", ScriptPath: "proxy.py", WordListDir: "/wl"}
	require.Equal(t, []string{"proxy.py", "generate_keys", "--a", "1", "/wl", "x", "y"}, py.Argv(req))
}

func TestEnviron(t *testing.T) {
	require.Nil(t, Location{}.Environ([]string{"HOME=/root"}))

	loc := Location{Env: map[string]string{"PYTHONPATH": "a:b"}}
	require.Equal(t, []string{"HOME=/root", "PYTHONPATH=a:b"}, loc.Environ([]string{"HOME=/root"}))
}
