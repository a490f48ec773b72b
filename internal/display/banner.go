package display

import (
	"fmt"
	"io"

	"github.com/backmassage/batchconv/internal/term"
)

// PrintBanner writes the ASCII art banner to w; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, ` _           _       _
| |__   __ _| |_ ___| |__   ___ ___  _ ____   __
| '_ \ / _`+"`"+` | __/ __| '_ \ / __/ _ \| '_ \ \ / /
| |_) | (_| | || (__| | | | (_| (_) | | | \ V /
|_.__/ \__,_|\__\___|_| |_|\___\___/|_| |_|\_/
`)
	fmt.Fprintln(w, term.NC)
}
