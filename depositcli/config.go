// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package depositcli

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/obolnetwork/wagyu/app/version"
)

const proxyName = "stakingdeposit_proxy"

// Config defines the filesystem layout the deposit cli is located in.
type Config struct {
	// ResourcesDir is the resources directory of the packaged application,
	// the bundled proxy lives in <ResourcesDir>/../build/bin.
	ResourcesDir string
	// BuildDir is the local build output directory, a single-file proxy lives in <BuildDir>/bin.
	BuildDir string
	// VendorDir is the vendored staking-deposit-cli source tree used with the system interpreter.
	VendorDir string
	// ScriptsDir contains the python proxy script used with the system interpreter.
	ScriptsDir string
	// PackagesDir is the pip --target directory the interpreter dependencies are installed into.
	PackagesDir string
	// GOOS overrides runtime.GOOS, it selects executable suffixes, interpreter name and path delimiter.
	GOOS string
}

// DefaultConfig returns the default layout: bundled in the resources dir beside the running executable,
// otherwise relative to the current working directory.
func DefaultConfig() Config {
	resourcesDir := "resources"
	if exe, err := os.Executable(); err == nil {
		resourcesDir = filepath.Join(filepath.Dir(exe), "resources")
	}

	vendorDir := filepath.Join("src", "vendors", version.DepositCLIVersion)

	return Config{
		ResourcesDir: resourcesDir,
		BuildDir:     "build",
		VendorDir:    vendorDir,
		ScriptsDir:   filepath.Join("src", "scripts"),
		PackagesDir:  filepath.Join("dist", "packages"),
		GOOS:         runtime.GOOS,
	}
}

func (c Config) goos() string {
	if c.GOOS == "" {
		return runtime.GOOS
	}

	return c.GOOS
}

func (c Config) windows() bool {
	return c.goos() == "windows"
}

func (c Config) proxyExecutable() string {
	if c.windows() {
		return proxyName + ".exe"
	}

	return proxyName
}

// bundledPath returns the proxy bundled with the packaged application.
func (c Config) bundledPath() string {
	return filepath.Join(c.ResourcesDir, "..", "build", "bin", c.proxyExecutable())
}

func (c Config) bundledWordLists() string {
	return filepath.Join(c.ResourcesDir, "..", "build", "word_lists")
}

// singleFilePath returns the single-file proxy produced by a local build.
func (c Config) singleFilePath() string {
	return filepath.Join(c.BuildDir, "bin", c.proxyExecutable())
}

func (c Config) singleFileWordLists() string {
	dir, err := filepath.Abs(c.BuildDir)
	if err != nil {
		dir = c.BuildDir
	}

	return filepath.Join(dir, "word_lists")
}

func (c Config) interpreter() string {
	if c.windows() {
		return "python"
	}

	return "python3"
}

func (c Config) scriptPath() string {
	return filepath.Join(c.ScriptsDir, proxyName+".py")
}

func (c Config) requirementsPath() string {
	return filepath.Join(c.VendorDir, "requirements.txt")
}

func (c Config) vendorWordLists() string {
	return filepath.Join(c.VendorDir, "ethstaker_deposit", "key_handling", "key_derivation", "word_lists")
}

// pathDelimiter returns the platform path list separator used in PYTHONPATH.
func (c Config) pathDelimiter() string {
	if c.windows() {
		return ";"
	}

	return ":"
}
