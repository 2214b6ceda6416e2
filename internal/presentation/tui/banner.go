package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`   __ _ _ __ ___  _   _ _ __ | | ___   __ _ `, "#4ade80"},
	{`  / _' | '__/ _ \| | | | '_ \| |/ _ \ / _' |`, "#34d399"},
	{` | (_| | | | (_) | |_| | |_) | | (_) | (_| |`, "#2dd4bf"},
	{`  \__, |_|  \___/ \__,_| .__/|_|\___/ \__, |`, "#22d3ee"},
	{`  |___/                |_|            |___/ `, "#38bdf8"},
}

// PrintBanner writes the startup banner to w. Colors degrade to plain text
// when w is not a terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
