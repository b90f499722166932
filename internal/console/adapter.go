// Package console is a thin stdin/stdout transport adapter for the
// dialogue controller. It renders option lists as numbered rows and maps a
// numeric reply back to the option's token; everything else is delivered
// as a text or command event. The dialogue core never sees any of this.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"kopilka/internal/dialogue"
)

// Adapter drives one user's dialogue over a line-based terminal.
type Adapter struct {
	controller *dialogue.Controller
	userID     int64
	in         io.Reader
	out        io.Writer
}

// New creates an adapter acting as the given user.
func New(controller *dialogue.Controller, userID int64, in io.Reader, out io.Writer) *Adapter {
	return &Adapter{controller: controller, userID: userID, in: in, out: out}
}

// Run starts the dialogue with the start command and then feeds each input
// line to the controller until EOF, /quit, or context cancellation.
func (a *Adapter) Run(ctx context.Context) error {
	render := a.controller.HandleEvent(dialogue.Event{
		UserID:  a.userID,
		Kind:    dialogue.KindCommand,
		Command: dialogue.CommandStart,
	})
	a.print(render)

	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		event, quit := a.decode(line, render.Options)
		if quit {
			return nil
		}
		render = a.controller.HandleEvent(event)
		a.print(render)
	}
	return scanner.Err()
}

// decode turns an input line into a dialogue event. A number selects the
// corresponding option of the previous render; a /slash word becomes a
// command; anything else is plain text.
func (a *Adapter) decode(line string, options []dialogue.Option) (dialogue.Event, bool) {
	if line == "/quit" || line == "/exit" {
		return dialogue.Event{}, true
	}

	if strings.HasPrefix(line, "/") {
		return dialogue.Event{
			UserID:  a.userID,
			Kind:    dialogue.KindCommand,
			Command: strings.TrimPrefix(line, "/"),
		}, false
	}

	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
		if button, err := dialogue.DecodeToken(options[n-1].Token); err == nil {
			return dialogue.Event{
				UserID: a.userID,
				Kind:   dialogue.KindButton,
				Button: button,
			}, false
		}
	}

	return dialogue.Event{UserID: a.userID, Kind: dialogue.KindText, Text: line}, false
}

func (a *Adapter) print(render dialogue.Render) {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, render.Text)
	for i, option := range render.Options {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, option.Label)
	}
	fmt.Fprint(a.out, "> ")
}
