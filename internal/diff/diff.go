// Package diff renders line-level structural diffs between two snapshots of
// a section, with markup stripped so reviewers compare prose rather than
// LaTeX noise.
package diff

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"scriptor/internal/document"
)

// ErrInsufficientInput is returned when either side of the comparison is
// blank. A diff against nothing would render as a total insertion or
// deletion, which is noise rather than signal.
var ErrInsufficientInput = errors.New("diff: both original and working text are required")

// Op classifies a diff row.
type Op string

const (
	OpEqual   Op = "equal"
	OpInsert  Op = "insert"
	OpDelete  Op = "delete"
	OpReplace Op = "replace"
)

// Row is one line pair of a side-by-side diff. Line numbers are 1-based;
// zero means no line on that side. Separator rows mark collapsed runs of
// unchanged lines between change groups.
type Row struct {
	Op        Op
	LeftNo    int
	Left      string
	RightNo   int
	Right     string
	Separator bool
}

// Table is the structural diff between an original and a working snapshot.
type Table struct {
	Rows []Row
}

// HasChanges reports whether any row inserts, deletes, or replaces a line.
func (t *Table) HasChanges() bool {
	for _, row := range t.Rows {
		switch row.Op {
		case OpInsert, OpDelete, OpReplace:
			return true
		}
	}
	return false
}

const contextLines = 1

// Compare normalizes both inputs, splits them into lines, and computes a
// grouped diff with one line of context around each change. Identical
// inputs produce an empty table. The result depends only on the inputs.
func Compare(original, working string) (*Table, error) {
	if strings.TrimSpace(original) == "" || strings.TrimSpace(working) == "" {
		return nil, ErrInsufficientInput
	}

	left := strings.Split(document.Normalize(original), "\n")
	right := strings.Split(document.Normalize(working), "\n")

	matcher := difflib.NewMatcher(left, right)
	groups := matcher.GetGroupedOpCodes(contextLines)

	table := &Table{}
	for gi, group := range groups {
		if gi > 0 {
			table.Rows = append(table.Rows, Row{Separator: true})
		}
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for k := 0; k < op.I2-op.I1; k++ {
					table.Rows = append(table.Rows, Row{
						Op:      OpEqual,
						LeftNo:  op.I1 + k + 1,
						Left:    left[op.I1+k],
						RightNo: op.J1 + k + 1,
						Right:   right[op.J1+k],
					})
				}
			case 'd':
				for k := op.I1; k < op.I2; k++ {
					table.Rows = append(table.Rows, Row{
						Op:     OpDelete,
						LeftNo: k + 1,
						Left:   left[k],
					})
				}
			case 'i':
				for k := op.J1; k < op.J2; k++ {
					table.Rows = append(table.Rows, Row{
						Op:      OpInsert,
						RightNo: k + 1,
						Right:   right[k],
					})
				}
			case 'r':
				ln, rn := op.I2-op.I1, op.J2-op.J1
				n := ln
				if rn > n {
					n = rn
				}
				for k := 0; k < n; k++ {
					row := Row{Op: OpReplace}
					if k < ln {
						row.LeftNo = op.I1 + k + 1
						row.Left = left[op.I1+k]
					}
					if k < rn {
						row.RightNo = op.J1 + k + 1
						row.Right = right[op.J1+k]
					}
					table.Rows = append(table.Rows, row)
				}
			}
		}
	}
	return table, nil
}

var diffCSS = `<style>
.diff-table table {
  width: 100%;
  border-collapse: collapse;
  font-family: monospace;
  font-size: 0.85rem;
}
.diff-table td, .diff-table th {
  border: 1px solid #ddd;
  padding: 0.35rem 0.5rem;
  vertical-align: top;
}
.diff-table .diff_add {
  background: #e6ffed;
}
.diff-table .diff_sub {
  background: #ffeef0;
}
.diff-table .diff_chg {
  background: #fff5b1;
}
</style>`

func leftClass(op Op) string {
	switch op {
	case OpDelete:
		return " class='diff_sub'"
	case OpReplace:
		return " class='diff_chg'"
	}
	return ""
}

func rightClass(op Op) string {
	switch op {
	case OpInsert:
		return " class='diff_add'"
	case OpReplace:
		return " class='diff_chg'"
	}
	return ""
}

func lineNo(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

// HTML renders the table as a side-by-side HTML diff. Identical inputs
// yield a table body with no change-marked cells.
func (t *Table) HTML() string {
	var sb strings.Builder
	sb.WriteString(diffCSS)
	sb.WriteString("<div class='diff-table'><table>")
	sb.WriteString("<tr><th colspan='2'>Original</th><th colspan='2'>Working</th></tr>")
	for _, row := range t.Rows {
		if row.Separator {
			sb.WriteString("<tr><td colspan='4' class='diff_sep'>&hellip;</td></tr>")
			continue
		}
		sb.WriteString("<tr>")
		sb.WriteString(fmt.Sprintf("<td%s>%s</td>", leftClass(row.Op), lineNo(row.LeftNo)))
		sb.WriteString(fmt.Sprintf("<td%s>%s</td>", leftClass(row.Op), html.EscapeString(row.Left)))
		sb.WriteString(fmt.Sprintf("<td%s>%s</td>", rightClass(row.Op), lineNo(row.RightNo)))
		sb.WriteString(fmt.Sprintf("<td%s>%s</td>", rightClass(row.Op), html.EscapeString(row.Right)))
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table></div>")
	return sb.String()
}

// CompareHTML is the one-call form used by the HTTP layer: it diffs two
// snapshots and renders the result, mapping insufficient input to a
// friendly placeholder.
func CompareHTML(original, working string) string {
	table, err := Compare(original, working)
	if err != nil {
		return "<p><em>Provide both original and working documents to view the diff.</em></p>"
	}
	return table.HTML()
}
