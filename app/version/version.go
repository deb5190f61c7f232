// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

// Package version provides the wagyu release version and build information.
package version

import (
	"context"
	"runtime/debug"

	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/app/z"
)

// Version is the release version of the codebase.
// Usually overridden by tag names when building binaries.
var Version = "v1.0.0-dev"

// DepositCLIVersion is the staking-deposit-cli release the bundled proxy is built from.
const DepositCLIVersion = "ethstaker-deposit-cli-1.2.2"

// GitCommit returns the git commit hash and timestamp from build info.
func GitCommit() (hash string, timestamp string) {
	hash, timestamp = "unknown", "unknown"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return hash, timestamp
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			hash = s.Value[:7]
		} else if s.Key == "vcs.time" {
			timestamp = s.Value
		}
	}

	return hash, timestamp
}

// LogInfo logs wagyu version information along-with the provided message.
func LogInfo(ctx context.Context, msg string) {
	gitHash, gitTimestamp := GitCommit()
	log.Info(ctx, msg,
		z.Str("version", Version),
		z.Str("deposit_cli", DepositCLIVersion),
		z.Str("git_commit_hash", gitHash),
		z.Str("git_commit_time", gitTimestamp),
	)
}
