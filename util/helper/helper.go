// functions with side effect
package helper

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/template"

	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/group/all"
	"github.com/gobwas/glob"
	"github.com/google/shlex"

	"github.com/miraveja/miraveja/util"
)

// Recognize "*.png" style glob, return parsed filenames.
func ParseFilenameArgs(args ...string) []string {
	names := []string{}
	for _, arg := range args {
		filenames := ParseGlobFilenames(arg)
		if filenames == nil {
			names = append(names, arg)
		} else {
			names = append(names, filenames...)
		}
	}
	names = util.UniqueSlice(names)
	return names
}

// ParseGlobFilenames expands a shell-like glob pattern (e.g. "*.png") into
// matching filenames on disk.
//
// Notes / behavior:
//   - Returns matches sorted lexicographically.
//   - If there are no matches (or pattern is invalid), returns an empty slice.
//   - For relative patterns, results are relative to the current working dir.
//   - This does NOT implement full bash features (brace expansion, extglob, etc.).
func ParseGlobFilenames(pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	// Expand "~/" (common shell convenience).
	if strings.HasPrefix(pattern, "~/") || pattern == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			if pattern == "~" {
				pattern = home
			} else {
				pattern = filepath.Join(home, pattern[2:])
			}
		}
	}

	// Normalize to slash for matching; use '/' as separator for gobwas/glob.
	patSlash := filepath.ToSlash(pattern)

	g, err := glob.Compile(patSlash, '/')
	if err != nil {
		return nil
	}

	walkRoot := computeWalkRoot(pattern)
	isAbs := filepath.IsAbs(pattern)

	var matches []string

	_ = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Ignore unreadable dirs/files.
			return nil
		}

		var target string
		if isAbs {
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil
			}
			target = filepath.ToSlash(abs)
		} else {
			rel, err := filepath.Rel(".", path)
			if err != nil {
				return nil
			}
			target = filepath.ToSlash(rel)
		}

		// Approximate dotfile behavior: don't match names starting with '.'
		// unless the corresponding pattern segment starts with '.'.
		if !dotfileOK(patSlash, target) {
			return nil
		}

		if g.Match(target) {
			if isAbs {
				matches = append(matches, filepath.Clean(target))
			} else {
				matches = append(matches, filepath.Clean(filepath.FromSlash(target)))
			}
		}
		return nil
	})

	sort.Strings(matches)
	return matches
}

// Choose a walk root: directory portion of the longest non-meta prefix of pattern.
func computeWalkRoot(pattern string) string {
	metaIndex := strings.IndexAny(pattern, "*?[{")
	prefix := pattern
	if metaIndex >= 0 {
		prefix = pattern[:metaIndex]
	}
	dir := filepath.Dir(prefix)
	if dir == "" {
		dir = "."
	}
	return dir
}

func dotfileOK(patternSlash, targetSlash string) bool {
	patSegs := strings.Split(patternSlash, "/")
	tgtSegs := strings.Split(targetSlash, "/")
	for i, seg := range tgtSegs {
		if !strings.HasPrefix(seg, ".") {
			continue
		}
		if i >= len(patSegs) || !strings.HasPrefix(patSegs[i], ".") {
			return false
		}
	}
	return true
}

// Return fullpath = join(dir,name), suitable for creating a new file in dir.
// If file already exists, append the proper numeric suffix to make sure fullpath does not exist.
// Note if a file system access error happens, it return last checked filename path along with the error
func GetNewFilePath(dir string, name string) (fullpath string, err error) {
	if dir == "" && name == "" {
		return "", fmt.Errorf("empty dir & name")
	}
	fullpath = filepath.Join(dir, name)
	if exists, err := util.FileExists(fullpath); !exists || err != nil {
		return fullpath, err
	}
	i := 1
	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	for {
		fullpath = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
		if exists, err := util.FileExists(fullpath); !exists || err != nil {
			return fullpath, err
		}
		i++
	}
}

var handler *sprout.DefaultHandler

// sprout provided template funcs
var templateFuncs map[string]any

func init() {
	handler = sprout.New()
	handler.AddGroups(all.RegistryGroup())
	templateFuncs = handler.Build()
}

// Simple wrapper on Go text template.Template.
type Template struct {
	*template.Template
}

// Execute Go text template and return rendered string.
// The result string is trim spaced.
func (t *Template) Exec(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Get a Go text template instance from tpl string.
// If tpl starts with "@" char, treat it (the rest part after @) as a file name
// and read template contents from it instead.
func GetTemplate(tpl string, strict bool) (*Template, error) {
	if strings.HasPrefix(tpl, "@") {
		contents, err := os.ReadFile(tpl[1:])
		if err != nil {
			return nil, err
		}
		tpl = string(contents)
	}
	templateInstance := template.New("template").Funcs(templateFuncs)
	if strict {
		templateInstance = templateInstance.Option("missingkey=error")
	}
	t, err := templateInstance.Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{Template: t}, nil
}

// Run a cmdline.
// If shell is true, execute it using system shell (cmd / sh); otherwise parse it using shlex.
func RunCmdline(cmdline string, shell bool, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	var command *exec.Cmd
	if shell {
		if runtime.GOOS == "windows" {
			command = exec.Command("cmd", "/C", cmdline)
		} else {
			command = exec.Command("sh", "-c", cmdline)
		}
	} else {
		args, err := shlex.Split(cmdline)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return fmt.Errorf("cmdline is empty")
		}
		command = exec.Command(args[0], args[1:]...)
	}
	command.Stdin = stdin
	command.Stdout = stdout
	command.Stderr = stderr
	return command.Run()
}
