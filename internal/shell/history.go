package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// selfNames are the invocations skipped when looking for the failed command.
var selfNames = []string{"oops"}

// RawCommandFromHistory picks the command to correct from the lines the
// alias function exports in OOPS_HISTORY: the most recent non-empty line
// that is not a call to alias or to oops itself. Only the last limit lines
// are considered when limit is positive. It returns "" when nothing
// qualifies.
func RawCommandFromHistory(history, alias string, limit int) string {
	lines, _ := nonEmptyLines(strings.NewReader(history), nil)
	return pickCommand(lines, alias, limit)
}

// ReadHistory returns the last limit commands in the shell's history file,
// oldest first. A missing file yields no commands.
func ReadHistory(sh Shell, limit int) ([]string, error) {
	f, err := os.Open(sh.HistoryFile())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := nonEmptyLines(f, sh.FromHistoryLine)
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", f.Name(), err)
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, nil
}

// LastCommand is RawCommandFromHistory over the shell's history file.
func LastCommand(sh Shell, alias string, limit int) (string, error) {
	lines, err := ReadHistory(sh, limit)
	if err != nil {
		return "", err
	}
	return pickCommand(lines, alias, 0), nil
}

func pickCommand(lines []string, alias string, limit int) string {
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if !invokesSelf(lines[i], alias) {
			return lines[i]
		}
	}
	return ""
}

func invokesSelf(line, alias string) bool {
	first, _, _ := strings.Cut(line, " ")
	if alias != "" && first == alias {
		return true
	}
	for _, name := range selfNames {
		if first == name {
			return true
		}
	}
	return strings.Contains(line, "OOPS_ALIAS")
}

func nonEmptyLines(r io.Reader, extract func(string) (string, bool)) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	// history lines can hold long pasted commands
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if extract != nil {
			var ok bool
			if line, ok = extract(line); !ok {
				continue
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
