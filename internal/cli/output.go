package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// printer writes command output. Icons and box rules are used only when the
// writer is a terminal; pipes and files get plain ASCII.
type printer struct {
	w     io.Writer
	fancy bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, fancy: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(args ...any) {
	fmt.Fprintln(p.w, args...)
}

func (p *printer) banner(title string) {
	rule := strings.Repeat("=", 55)
	if p.fancy {
		rule = strings.Repeat("═", 55)
	}
	p.println(rule)
	p.println("  " + title)
	p.println(rule)
}

func (p *printer) section(title string) {
	fill := 55 - len(title) - 5
	if fill < 3 {
		fill = 3
	}
	if p.fancy {
		p.printf("─── %s %s\n", title, strings.Repeat("─", fill))
		return
	}
	p.printf("--- %s %s\n", title, strings.Repeat("-", fill))
}

func (p *printer) icon(ok bool) string {
	switch {
	case p.fancy && ok:
		return "\xe2\x9c\x85" // check mark
	case p.fancy:
		return "\xe2\x9d\x8c" // cross mark
	case ok:
		return "[ok]"
	default:
		return "[FAIL]"
	}
}

// absent marks something not yet created, which is not an error.
func (p *printer) absent() string {
	if p.fancy {
		return "⬚ "
	}
	return "[--]"
}
