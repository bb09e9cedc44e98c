package app

import (
	"fmt"
	"strings"

	clipboard "golang.design/x/clipboard"
)

// Maximum clipboard size in bytes (10MB) - helps avoid X11 BadLength errors on Linux
const maxClipboardSize = 10 * 1024 * 1024

// safeClipboardWrite attempts to write data to clipboard with panic recovery.
// Returns an error if the write fails or data is too large.
func safeClipboardWrite(format clipboard.Format, data []byte) (err error) {
	if len(data) > maxClipboardSize {
		return fmt.Errorf("data too large for clipboard (%d bytes, max %d bytes / %.1f MB). Try selecting fewer rows",
			len(data), maxClipboardSize, float64(maxClipboardSize)/(1024*1024))
	}

	// Use defer/recover to catch panics from clipboard operations
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard write failed: %v", r)
		}
	}()

	clipboard.Write(format, data)
	return nil
}

// CopySelectionToClipboard copies the selected rows of the filtered and
// sorted view to the clipboard as tab-separated text with a header row.
// Range indexes address the full view, so a selection may span pages.
func (a *App) CopySelectionToClipboard(req CopySelectionRequest) (*CopySelectionResult, error) {
	if a == nil {
		return nil, fmt.Errorf("app not initialised")
	}

	// Lazy init clipboard
	a.clipOnce.Do(func() {
		if err := clipboard.Init(); err == nil {
			a.clipOK = true
		} else {
			a.clipOK = false
			if a.ctx != nil {
				a.Log("error", fmt.Sprintf("Clipboard init failed: %v", err))
			}
		}
	})
	if !a.clipOK {
		return nil, fmt.Errorf("clipboard not available")
	}

	columns, rows := a.viewRows(req.Sort)
	if len(columns) == 0 {
		return &CopySelectionResult{RowsCopied: 0}, nil
	}

	sanitize := func(s string) string {
		ss := strings.ReplaceAll(s, "\t", " ")
		ss = strings.ReplaceAll(ss, "\r", " ")
		ss = strings.ReplaceAll(ss, "\n", " ")
		return ss
	}

	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(sanitize(col))
	}
	b.WriteByte('\n')

	appendRow := func(idx int) {
		row := rows[idx]
		for i, col := range columns {
			if i > 0 {
				b.WriteByte('\t')
			}
			v, _ := row.Cell(col)
			b.WriteString(sanitize(v))
		}
		b.WriteByte('\n')
	}

	rowsCopied := 0
	if req.SelectAll {
		for i := range rows {
			appendRow(i)
		}
		rowsCopied = len(rows)
	} else {
		for _, rng := range req.Ranges {
			start, end := rng.Start, rng.End
			if start < 0 {
				start = 0
			}
			if end >= len(rows) {
				end = len(rows) - 1
			}
			for i := start; i <= end; i++ {
				appendRow(i)
				rowsCopied++
			}
		}
	}

	outBytes := []byte(b.String())
	if err := safeClipboardWrite(clipboard.FmtText, outBytes); err != nil {
		a.Log("error", fmt.Sprintf("Clipboard write failed: %v", err))
		return nil, fmt.Errorf("failed to copy to clipboard: %v", err)
	}

	a.Log("info", fmt.Sprintf("Copied %d rows (%d bytes) to clipboard", rowsCopied, len(outBytes)))
	return &CopySelectionResult{RowsCopied: rowsCopied}, nil
}
