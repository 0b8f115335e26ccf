package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// renderText lays the document out for reading without tooling. Kept
// deliberately plain: no color codes, nothing terminal-dependent.
func renderText(doc *Document) string {
	var b strings.Builder

	title := "offload backup report"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	writeField(&b, "Source", doc.Backup.Source)
	writeField(&b, "Destination", doc.Backup.Destination)
	writeField(&b, "Status", doc.Backup.Status)
	writeField(&b, "Started", doc.Backup.StartTime.Format(time.DateTime))
	writeField(&b, "Finished", doc.Backup.EndTime.Format(time.DateTime))
	writeField(&b, "Duration", formatSeconds(doc.Backup.DurationSeconds))
	b.WriteString("\n")

	st := doc.Statistics
	writeField(&b, "Files scanned", fmt.Sprintf("%d", st.FilesScanned))
	writeField(&b, "Files copied", fmt.Sprintf("%d", st.FilesCopied))
	if st.FilesSkipped > 0 {
		writeField(&b, "Files skipped", fmt.Sprintf("%d (resume)", st.FilesSkipped))
	}
	writeField(&b, "Files failed", fmt.Sprintf("%d", st.FilesFailed))
	writeField(&b, "Data copied", humanize.IBytes(clampUint64(st.BytesCopied)))
	if st.FilesVerified > 0 {
		writeField(&b, "Verified", fmt.Sprintf("%d matched, %d mismatched",
			st.FilesVerified-st.VerifyMismatches, st.VerifyMismatches))
	}

	if len(doc.FailedFiles) > 0 {
		writeSection(&b, "Failed files")
		for _, f := range doc.FailedFiles {
			b.WriteString(f.RelPath + "\n")
			if f.Error != "" {
				b.WriteString("    " + f.Error + "\n")
			}
		}
	}

	if bad := mismatches(doc); len(bad) > 0 {
		writeSection(&b, "Verification mismatches")
		for _, path := range bad {
			v := doc.Verification[path]
			b.WriteString(path + "\n")
			if v.Error != "" {
				b.WriteString("    " + v.Error + "\n")
			}
		}
	}

	if len(doc.ScanIssues) > 0 {
		writeSection(&b, "Scan warnings")
		for _, issue := range doc.ScanIssues {
			b.WriteString(issue + "\n")
		}
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-15s %s\n", label+":", value)
}

func writeSection(b *strings.Builder, title string) {
	b.WriteString("\n" + title + "\n")
	b.WriteString(strings.Repeat("-", len(title)) + "\n")
}

func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second))
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func clampUint64(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}
