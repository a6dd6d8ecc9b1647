package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/tdh8316/Pindown/internal/extract"
	"github.com/tdh8316/Pindown/internal/pipeline"
)

type Printer struct {
	noColor bool
	w       io.Writer
}

func NewPrinter(stdout io.Writer, noColor bool) *Printer {
	return &Printer{noColor: noColor, w: stdout}
}

func (p *Printer) Writer() io.Writer {
	return p.w
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

func (p *Printer) Banner() {
	rule := strings.Repeat("=", 50)
	title := " Pindown - Pinterest Downloader "
	if !p.noColor {
		title = color.HiRedString(title)
	}
	fmt.Fprintf(p.w, "%s\n%s\n%s\n\n", rule, title, rule)
}

func (p *Printer) Menu(outDir string) {
	if p.noColor {
		fmt.Fprintln(p.w, "Output folder:", outDir)
	} else {
		fmt.Fprintln(p.w, "Output folder:", color.HiWhiteString(outDir))
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "Choose an option:")
	fmt.Fprintln(p.w, "  1) Download a single Pinterest link")
	fmt.Fprintln(p.w, "  2) Download multiple links (paste list)")
	fmt.Fprintln(p.w, "  3) Change output folder")
	fmt.Fprintln(p.w, "  4) Exit")
}

func (p *Printer) Fetching(link string) {
	fmt.Fprintf(p.w, "- Fetching page: %s\n", link)
}

func (p *Printer) Found(asset extract.Candidate) {
	if p.noColor {
		fmt.Fprintf(p.w, "  Found %s: %s\n", asset.Kind, asset.URL)
		return
	}
	fmt.Fprintf(p.w, "  Found %s: %s\n", color.HiWhiteString(asset.Kind.String()), asset.URL)
}

// Outcome prints the one-line result for a link. Successful downloads also
// show the file size.
func (p *Printer) Outcome(o pipeline.Outcome) {
	msg := o.Message()

	switch o.Status {
	case pipeline.StatusDownloaded:
		size := humanize.Bytes(uint64(o.Bytes))
		if p.noColor {
			fmt.Fprintf(p.w, "[+] %s (%s)\n", msg, size)
		} else {
			fmt.Fprintf(p.w, "[%s] %s (%s)\n", color.HiGreenString("+"), msg, color.HiWhiteString(size))
		}
	case pipeline.StatusNoAsset:
		if p.noColor {
			fmt.Fprintf(p.w, "[-] %s\n", msg)
		} else {
			fmt.Fprintf(p.w, "[%s] %s\n", color.HiRedString("-"), color.HiYellowString(msg))
		}
	default:
		if p.noColor {
			fmt.Fprintf(p.w, "[!] %s\n", msg)
		} else {
			fmt.Fprintf(p.w, "[%s] %s\n", color.HiRedString("!"), color.HiRedString(msg))
		}
	}
}

func (p *Printer) Progress(idx, total int) {
	fmt.Fprintf(p.w, "[%d/%d]\n", idx, total)
}

func (p *Printer) Summary(success, total int) {
	if p.noColor || success == total {
		fmt.Fprintf(p.w, "Completed: %d/%d successful.\n", success, total)
		return
	}
	fmt.Fprintf(p.w, "Completed: %s successful.\n", color.HiYellowString("%d/%d", success, total))
}

func (p *Printer) Warn(msg string) {
	if p.noColor {
		fmt.Fprintf(p.w, "[!] %s\n", msg)
		return
	}
	fmt.Fprintf(p.w, "[%s] %s\n", color.HiRedString("!"), color.HiYellowString(msg))
}

func (p *Printer) Info(msg string) {
	if p.noColor {
		fmt.Fprintf(p.w, "[i] %s\n", msg)
		return
	}
	fmt.Fprintf(p.w, "[%s] %s\n", color.HiBlueString("i"), msg)
}
