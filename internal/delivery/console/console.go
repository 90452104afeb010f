package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Vovarama1992/companion/internal/domain"
	"github.com/Vovarama1992/companion/internal/ports"
	"go.uber.org/zap"
)

type conversation interface {
	Submit(text string) error
	Events() <-chan ports.ConversationEvent
	Close()
}

// Run drives one conversation from in and renders its transcript to out.
// It is the only writer to out and returns once the conversation's events are exhausted.
// End of input counts as "exit".
func Run(ctx context.Context, conv conversation, in io.Reader, out io.Writer, log *zap.Logger) error {
	stop := make(chan struct{})
	defer close(stop)

	lines := make(chan string)
	go read(in, lines, stop)

	w := bufio.NewWriter(out)
	events := conv.Events()
	done := ctx.Done()
	cancelled := false

	// input is held back until the greeting is on screen
	var input <-chan string

	for {
		select {
		case <-done:
			done = nil
			cancelled = true
			input = nil
			conv.Close()

		case ev, ok := <-events:
			if !ok {
				if err := w.Flush(); err != nil {
					return err
				}
				return ctx.Err()
			}
			fmt.Fprint(w, render(ev))
			if input == nil && !cancelled {
				input = lines
			}

		case line, ok := <-input:
			if !ok {
				line = "exit"
				input = nil
				lines = nil
			}
			if !domain.IsTermination(line) && strings.TrimSpace(line) != "" {
				fmt.Fprintf(w, "%s: %s\n\n", domain.UserSender, line)
			}
			submit(conv, line, log)
		}

		if err := w.Flush(); err != nil {
			return err
		}
	}
}

func submit(conv conversation, line string, log *zap.Logger) {
	switch err := conv.Submit(line); {
	case err == nil, errors.Is(err, domain.ErrEmptyInput):
	case errors.Is(err, domain.ErrSessionEnded):
		log.Debug("[CONSOLE] input after end", zap.String("line", line))
	default:
		log.Warn("[CONSOLE] submit", zap.String("line", line), zap.Error(err))
	}
}

func read(in io.Reader, lines chan<- string, stop <-chan struct{}) {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- strings.TrimRight(sc.Text(), "\r"):
		case <-stop:
			return
		}
	}
}

func render(ev ports.ConversationEvent) string {
	switch ev.Kind {
	case ports.EventImage:
		if !exists(ev.Path) {
			return "Error: Image not found!\n\n"
		}
		return "Image: " + ev.Path + "\n\n"
	case ports.EventVideo:
		if !exists(ev.Path) {
			return "Error: Video not found!\n\n"
		}
		return "Video saved at: " + ev.Path + "\n\n"
	case ports.EventError:
		return "Error: " + ev.Text + "\n\n"
	default:
		return ev.Sender + ": " + ev.Text + "\n\n"
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
