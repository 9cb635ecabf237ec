package services

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"mariadbpaas/models"
)

var (
	conditionalOpen  = regexp.MustCompile(`/\*!\d+\s*`)
	conditionalClose = regexp.MustCompile(`\s*\*/;?$`)
)

// replayDump feeds a mysqldump stream to execute, one statement at a time.
// Blank lines and `--` comments are skipped; versioned conditional comments
// (`/*!NNNNN ... */`) are unwrapped so their payload runs; lines accumulate
// until a trailing semicolon closes the statement. A failing statement is
// counted and the replay continues: a dump restore is best effort by design.
func replayDump(r io.Reader, execute func(stmt string) error) (models.RestoreResult, error) {
	var result models.RestoreResult
	var sb strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		if strings.HasPrefix(line, "/*!") {
			processed := conditionalOpen.ReplaceAllString(line, "")
			processed = conditionalClose.ReplaceAllString(processed, ";")
			if trimmed := strings.TrimSpace(processed); trimmed == "" || trimmed == ";" {
				continue
			}
			line = processed
		}

		sb.WriteString(line)
		sb.WriteString(" ")

		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(sb.String())
			if err := execute(stmt); err != nil {
				result.FailedStatements++
			} else {
				result.ExecutedStatements++
			}
			sb.Reset()
		}
	}
	return result, scanner.Err()
}
