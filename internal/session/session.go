package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Terminal strings
const (
	Banner      = "Type 'exit' to quit"
	Prompt      = "Enter a prompt: "
	ExitMessage = "Exiting..."
	ExitCommand = "exit"
)

// Asker answers one question
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// recorder receives the raw input lines for the transcript
type recorder interface {
	Record(line string)
}

// Session is the read-ask-print loop
type Session struct {
	in     io.Reader
	out    io.Writer
	agent  Asker
	logger *zap.Logger
}

// New creates a session
func New(in io.Reader, out io.Writer, agent Asker, logger *zap.Logger) *Session {
	return &Session{in: in, out: out, agent: agent, logger: logger}
}

type readResult struct {
	line string
	err  error
}

// Run loops until the exit command, end of input or ctx cancellation.
// Agent errors are printed and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	lines := make(chan readResult)
	next := make(chan struct{})
	done := make(chan struct{})
	defer close(done)

	// the reader goroutine lets cancellation end a blocked terminal read
	go func() {
		reader := bufio.NewReader(s.in)
		for {
			select {
			case <-next:
			case <-done:
				return
			}
			var r readResult
			line, err := reader.ReadString('\n')
			switch {
			case err == nil:
				r.line = strings.TrimSuffix(line, "\n")
			case errors.Is(err, io.EOF) && line != "":
				// last line without a trailing newline
				r.line = line
			default:
				r.err = err
			}
			select {
			case lines <- r:
			case <-done:
				return
			}
		}
	}()

	fmt.Fprintln(s.out, Banner)
	for {
		fmt.Fprint(s.out, Prompt)

		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			return s.exit()
		}

		var r readResult
		select {
		case r = <-lines:
		case <-ctx.Done():
			return s.exit()
		}

		if r.err != nil {
			if !errors.Is(r.err, io.EOF) {
				s.logger.Warn("Input read failed", zap.Error(r.err))
			}
			fmt.Fprintln(s.out)
			return s.exit()
		}

		line := strings.TrimSuffix(r.line, "\r")
		if rec, ok := s.out.(recorder); ok {
			rec.Record(line)
		}
		if strings.EqualFold(line, ExitCommand) {
			return s.exit()
		}

		answer, err := s.agent.Ask(ctx, line)
		if ctx.Err() != nil {
			return s.exit()
		}
		if err != nil {
			s.logger.Error("Agent failed", zap.String("question", line), zap.Error(err))
			fmt.Fprintf(s.out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(s.out, answer)
	}
}

func (s *Session) exit() error {
	fmt.Fprintln(s.out, ExitMessage)
	return nil
}
