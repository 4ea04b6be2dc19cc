package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
	gitExecutable      = "git"
	gitNotFoundFormat  = "%s not found in or above %s"
	absolutePathFormat = "resolve absolute path for %s: %w"
)

var gitDescribeAttempts = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

// GetApplicationVersion reports the module version stamped by the Go toolchain, or the output of
// git describe when running from a checkout, or "unknown".
func GetApplicationVersion() string {
	if buildInfo, available := debug.ReadBuildInfo(); available {
		if version := buildInfo.Main.Version; version != "" && version != developmentVersion {
			return version
		}
	}

	repositoryDirectory, err := findGitDirectory(".")
	if err != nil {
		return unknownVersion
	}
	for _, arguments := range gitDescribeAttempts {
		// #nosec G204
		describeCommand := exec.Command(gitExecutable, arguments...)
		describeCommand.Dir = repositoryDirectory
		describeOutput, describeErr := describeCommand.Output()
		if describeErr == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput))
		}
	}
	return unknownVersion
}

// findGitDirectory walks upward from startDirectory to the first directory that holds a .git folder.
func findGitDirectory(startDirectory string) (string, error) {
	currentDirectory, err := filepath.Abs(startDirectory)
	if err != nil {
		return "", fmt.Errorf(absolutePathFormat, startDirectory, err)
	}
	for {
		if info, statErr := os.Stat(filepath.Join(currentDirectory, GitDirectoryName)); statErr == nil && info.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", fmt.Errorf(gitNotFoundFormat, GitDirectoryName, startDirectory)
		}
		currentDirectory = parentDirectory
	}
}
