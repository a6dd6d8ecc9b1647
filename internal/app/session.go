package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tdh8316/Pindown/internal/config"
	"github.com/tdh8316/Pindown/internal/download"
	"github.com/tdh8316/Pindown/internal/output"
	"github.com/tdh8316/Pindown/internal/pipeline"
)

type session struct {
	proc    *pipeline.Processor
	printer *output.Printer
	outDir  string
	in      *lineReader
}

func (s *session) batch(ctx context.Context, args []string, stderr io.Writer) int {
	links := ParseLinks(strings.Join(args, " "))
	if len(links) == 0 {
		fmt.Fprintln(stderr, "no Pinterest links given")
		return exitUsage
	}

	success, total, err := s.download(ctx, links)
	if err != nil {
		return s.stop(err)
	}
	if success < total {
		return exitPartial
	}
	return exitOK
}

func (s *session) menu(ctx context.Context) int {
	for {
		s.printer.Banner()
		s.printer.Menu(s.outDir)
		s.printer.Printf("Enter 1-4: ")

		choice, err := s.in.ReadLine(ctx)
		if err != nil {
			return s.stop(err)
		}
		s.printer.Println()

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.single(ctx)
		case "2":
			err = s.multiple(ctx)
		case "3":
			err = s.changeDir(ctx)
		case "4":
			s.printer.Println("Goodbye!")
			return exitOK
		default:
			s.printer.Println("Invalid choice. Please enter 1-4.")
			s.printer.Println()
			err = sleep(ctx, invalidChoicePause)
		}
		if err != nil {
			return s.stop(err)
		}
	}
}

// stop maps the error that ended a session onto an exit code. End of input
// counts as choosing Exit.
func (s *session) stop(err error) int {
	if errors.Is(err, io.EOF) {
		s.printer.Println()
		s.printer.Println("Goodbye!")
		return exitOK
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.printer.Println()
		s.printer.Warn(err.Error())
		return exitInputError
	}
	s.printer.Println()
	s.printer.Println("Interrupted.")
	return exitInterrupted
}

func (s *session) single(ctx context.Context) error {
	s.printer.Printf("Paste Pinterest link: ")
	link, err := s.in.ReadLine(ctx)
	if err != nil {
		return err
	}
	link = strings.TrimSpace(link)
	if link == "" {
		s.printer.Println("No link provided. Returning to menu...")
		s.printer.Println()
		return nil
	}

	s.process(ctx, link)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.printer.Println()
	return s.pause(ctx)
}

func (s *session) multiple(ctx context.Context) error {
	s.printer.Println("Paste links separated by newlines, commas, or spaces.")
	s.printer.Println("When finished, press Enter on an empty line.")

	var lines []string
	for {
		line, err := s.in.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}

	links := ParseLinks(strings.Join(lines, "\n"))
	if len(links) == 0 {
		s.printer.Println("No valid links detected. Returning to menu...")
		s.printer.Println()
		return s.pause(ctx)
	}

	s.printer.Printf("Found %d link(s). Starting downloads...\n\n", len(links))
	if _, _, err := s.download(ctx, links); err != nil {
		return err
	}
	s.printer.Println()
	return s.pause(ctx)
}

// download processes links in order and prints the summary line. It stops
// early only when ctx is done.
func (s *session) download(ctx context.Context, links []string) (success, total int, err error) {
	total = len(links)
	for idx, link := range links {
		if err := ctx.Err(); err != nil {
			return success, total, err
		}
		s.printer.Progress(idx+1, total)
		if s.process(ctx, link).OK() {
			success++
		}
		s.printer.Println()
	}
	if err := ctx.Err(); err != nil {
		return success, total, err
	}
	s.printer.Summary(success, total)
	return success, total, nil
}

func (s *session) process(ctx context.Context, link string) pipeline.Outcome {
	s.printer.Fetching(link)
	out := s.proc.ProcessLink(ctx, link, s.outDir)
	s.printer.Outcome(out)
	return out
}

func (s *session) changeDir(ctx context.Context) error {
	s.printer.Printf("Enter new output folder path: ")
	raw, err := s.in.ReadLine(ctx)
	if err != nil {
		return err
	}

	if raw = strings.TrimSpace(raw); raw == "" {
		s.printer.Println("No folder provided.")
	} else {
		dir := config.ExpandPath(raw)
		if err := download.EnsureDir(dir); err != nil {
			s.printer.Printf("Failed to set output folder: %v\n", err)
		} else {
			s.outDir = dir
			s.printer.Printf("Output folder set to: %s\n", dir)
		}
	}
	s.printer.Println()
	return s.pause(ctx)
}

func (s *session) pause(ctx context.Context) error {
	s.printer.Printf("Press Enter to continue...")
	_, err := s.in.ReadLine(ctx)
	s.printer.Println()
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
