package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/engine/scanner"
	"go.trai.ch/ptree/internal/ui/style"
)

// report is the --debug summary written after a run.
type report struct {
	result  *scanner.Result
	stats   domain.Stats
	render  time.Duration
	total   time.Duration
	ttl     time.Duration
	quieted bool
}

func writeReport(w io.Writer, profile termenv.Profile, r *report) {
	key := func(s string) string { return s }
	if profile != termenv.Ascii {
		lr := lipgloss.NewRenderer(w)
		lr.SetColorProfile(profile)
		st := lr.NewStyle().Foreground(style.Slate)
		key = func(s string) string { return st.Render(s) }
	}

	res := r.result
	rows := [][2]string{
		{"mode", res.Mode.String()},
		{"scan root", res.Root},
		{"target", res.Target},
		{"entries", fmt.Sprintf("%s (%s directories, %s files, %s symlinks, %s inaccessible)",
			humanize.Comma(int64(r.stats.Total())),
			humanize.Comma(int64(r.stats.Directories)),
			humanize.Comma(int64(r.stats.Files)),
			humanize.Comma(int64(r.stats.Symlinks)),
			humanize.Comma(int64(r.stats.Inaccessible)),
		)},
		{"size", humanize.IBytes(uint64(max(r.stats.Bytes, 0)))},
		{"threads", humanize.Comma(int64(res.Threads))},
		{"cache load", res.Timings.CacheLoad.String()},
		{"traversal", res.Timings.Traversal.String()},
		{"merge", res.Timings.Merge.String()},
		{"cache save", res.Timings.CacheSave.String()},
	}
	if r.quieted {
		rows = append(rows, [2]string{"render", "skipped"})
	} else {
		rows = append(rows, [2]string{"render", r.render.String()})
	}
	rows = append(rows,
		[2]string{"total", r.total.String()},
		[2]string{"cache ttl", r.ttl.String()},
	)
	if res.Snapshot != nil {
		rows = append(rows, [2]string{"captured", res.Snapshot.CapturedAt.Format(time.RFC3339)})
	}
	rows = append(rows, [2]string{"cache file", res.CachePath})

	width := 0
	for _, row := range rows {
		width = max(width, len(row[0]))
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(key(row[0]+":") + strings.Repeat(" ", width-len(row[0])+1) + row[1] + "\n")
	}
	_, _ = io.WriteString(w, b.String())
}
