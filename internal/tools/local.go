package tools

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const defaultNotesFile = "notes.txt"

// LocalFileSearch scans a local UTF-8 text file for lines containing the
// keyword, case-insensitively. An empty filename falls back to notes.txt.
func (t *Toolset) LocalFileSearch(keyword, filename string) Result {
	const tool = "local_file_search"
	if filename == "" {
		filename = defaultNotesFile
	}

	file, err := os.Open(filename)
	if err != nil {
		return errorResult(tool, fmt.Errorf("local file search failed: %w", err))
	}
	defer file.Close()

	lowered := strings.ToLower(keyword)
	var hits []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(strings.ToLower(line), lowered) {
			hits = append(hits, strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return errorResult(tool, err)
	}
	if len(hits) == 0 {
		return Result{
			Tool:    tool,
			Status:  StatusNoResults,
			Content: fmt.Sprintf("No matches for %q.", keyword),
			Source:  filename,
		}
	}
	return Result{Tool: tool, Status: StatusSuccess, Content: strings.Join(hits, "\n"), Source: filename}
}
