package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{`           _     _                        `, "#5eead4"},
	{` ___ _   _| |__ | |__   _____  _____ _ __ `, "#2dd4bf"},
	{`/ __| | | | '_ \| '_ \ / _ \ \/ / _ \ '__|`, "#22d3ee"},
	{`\__ \ |_| | |_) | |_) | (_) >  <  __/ |   `, "#38bdf8"},
	{`|___/\__,_|_.__/|_.__/ \___/_/\_\___|_|   `, "#60a5fa"},
}

// PrintBanner writes the ASCII art banner to w using the given colour profile.
func PrintBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
