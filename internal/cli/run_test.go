package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fendrel/codeloom/internal/cli"
)

func writeGoFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunReportsMatchesWithoutReplace(t *testing.T) {
	dir := t.TempDir()
	path := writeGoFile(t, dir, "a.go", "package p\nvar a = 1\nvar b = 2\n")

	var out, errBuf bytes.Buffer
	opts := cli.Options{
		Lang:    "go",
		Pattern: "var $x = $y",
		Files:   []string{path},
		Stdout:  &out,
		Stderr:  &errBuf,
	}
	require.NoError(t, cli.Run(opts))
	require.Equal(t, "", errBuf.String())
	require.Contains(t, out.String(), "match")
	require.Equal(t, 2, strings.Count(out.String(), "match"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "package p\nvar a = 1\nvar b = 2\n", string(got))
}

func TestRunRewritesFileInPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeGoFile(t, dir, "a.go", "package p\nvar a = 1\n")

	replace := "var $x = 0"
	var out, errBuf bytes.Buffer
	opts := cli.Options{
		Lang:    "go",
		Pattern: "var $x = $y",
		Replace: &replace,
		Files:   []string{path},
		Stdout:  &out,
		Stderr:  &errBuf,
	}
	require.NoError(t, cli.Run(opts))
	require.Equal(t, "", errBuf.String())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "package p\nvar a = 0\n", string(got))
}

func TestRunDryRunLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writeGoFile(t, dir, "a.go", "package p\nvar a = 1\n")

	replace := "var $x = 0"
	var out bytes.Buffer
	opts := cli.Options{
		Lang:    "go",
		Pattern: "var $x = $y",
		Replace: &replace,
		DryRun:  true,
		Files:   []string{path},
		Stdout:  &out,
	}
	require.NoError(t, cli.Run(opts))
	require.Contains(t, out.String(), "-var a = 1")
	require.Contains(t, out.String(), "+var a = 0")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "package p\nvar a = 1\n", string(got))
}

func TestRunOnlyMatchingPrintsReplacementText(t *testing.T) {
	dir := t.TempDir()
	path := writeGoFile(t, dir, "a.go", "package p\nvar a = 1\n")

	replace := "var $x = 0"
	var out bytes.Buffer
	opts := cli.Options{
		Lang:         "go",
		Pattern:      "var $x = $y",
		Replace:      &replace,
		OnlyMatching: true,
		DryRun:       true,
		Files:        []string{path},
		Stdout:       &out,
	}
	require.NoError(t, cli.Run(opts))
	require.Equal(t, "a = 0\n", out.String())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "package p\nvar a = 1\n", string(got))
}

func TestRunConfirmDeclineSkipsReplacement(t *testing.T) {
	dir := t.TempDir()
	path := writeGoFile(t, dir, "a.go", "package p\nvar a = 1\n")

	replace := "var $x = 0"
	var out bytes.Buffer
	opts := cli.Options{
		Lang:    "go",
		Pattern: "var $x = $y",
		Replace: &replace,
		Confirm: true,
		Files:   []string{path},
		Stdin:   strings.NewReader("n\n"),
		Stdout:  &out,
	}
	require.NoError(t, cli.Run(opts))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "package p\nvar a = 1\n", string(got))
}

func TestRunRewritesNestedAndSiblingMatchesInSourceOrder(t *testing.T) {
	dir := t.TempDir()
	// The enclosing func already matches through "var a = 1", so the
	// sibling "var b = 2" is only reached with Recursive; both rewrites
	// must then land in source order.
	src := "func f() {\n\tif true {\n\t\tvar a = 1\n\t}\n\tvar b = 2\n}\n"
	path := writeGoFile(t, dir, "a.go", src)

	replace := "var $x = renamed($y)"
	var out, errBuf bytes.Buffer
	opts := cli.Options{
		Lang:      "go",
		Pattern:   "var $x = $y",
		Replace:   &replace,
		Recursive: true,
		Files:     []string{path},
		Stdout:  &out,
		Stderr:  &errBuf,
	}
	require.NoError(t, cli.Run(opts))
	require.Equal(t, "", errBuf.String())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "func f() {\n\tif true {\n\t\tvar a = renamed(1)\n\t}\n\tvar b = renamed(2)\n}\n", string(got))
}

func TestRunRejectsUnsupportedLanguage(t *testing.T) {
	opts := cli.Options{Lang: "cobol", Pattern: "x"}
	err := cli.Run(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported language")
}

func TestRunOnParseErrorPolicyAbortsRun(t *testing.T) {
	dir := t.TempDir()
	broken := writeGoFile(t, dir, "broken.go", "package p\nvar a = \n")
	ok := writeGoFile(t, dir, "ok.go", "package p\nvar a = 1\n")

	var out, errBuf bytes.Buffer
	opts := cli.Options{
		Lang:         "go",
		Pattern:      "var $x = $y",
		Files:        []string{broken, ok},
		OnParseError: "error",
		Stdout:       &out,
		Stderr:       &errBuf,
	}
	err := cli.Run(opts)
	require.Error(t, err)
}

func TestRunReadsPatternTargetFromStdin(t *testing.T) {
	var out bytes.Buffer
	opts := cli.Options{
		Lang:    "go",
		Pattern: "var $x = $y",
		Files:   []string{"-"},
		Stdin:   strings.NewReader("package p\nvar a = 1\n"),
		Stdout:  &out,
	}
	require.NoError(t, cli.Run(opts))
	require.Contains(t, out.String(), "-:2:")
}
