package spreadsheet

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
)

// Counter counts listing rows in-process, falling back to an external
// counting script when the workbook cannot be parsed. The script prints
// "SUCCESS:<n>" on its last line, or "ERROR:<message>".
type Counter struct {
	reader      *Reader
	scriptDir   string
	script      string
	interpreter string
}

func NewCounter(reader *Reader, scriptDir, script, interpreter string) *Counter {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &Counter{reader: reader, scriptDir: scriptDir, script: script, interpreter: interpreter}
}

func (c *Counter) CountRows(ctx context.Context, path string) (int, error) {
	count, err := c.reader.CountRows(ctx, path)
	if err == nil {
		return count, nil
	}
	if c.script == "" {
		return 0, err
	}
	log.Printf("In-process count of %s failed (%v), trying %s", path, err, c.script)

	cmd := exec.CommandContext(ctx, c.interpreter, c.script, path)
	cmd.Dir = c.scriptDir
	out, runErr := cmd.Output()
	if runErr != nil {
		return 0, fmt.Errorf("count script failed: %w", runErr)
	}
	return parseCountOutput(string(out))
}

func parseCountOutput(output string) (int, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if rest, ok := strings.CutPrefix(line, "SUCCESS:"); ok {
			return strconv.Atoi(strings.TrimSpace(rest))
		}
		if rest, ok := strings.CutPrefix(line, "ERROR:"); ok {
			return 0, fmt.Errorf("count script: %s", strings.TrimSpace(rest))
		}
	}
	return 0, fmt.Errorf("count script produced no result line")
}
