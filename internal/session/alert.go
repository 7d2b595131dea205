package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/moodify-app/moodify/internal/api"
	"github.com/moodify-app/moodify/internal/link"
)

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(message string)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(message string)

// Alert implements Alerter.
func (f AlerterFunc) Alert(message string) {
	f(message)
}

// WriterAlerter writes each message on its own line.
type WriterAlerter struct {
	W io.Writer
}

// Alert implements Alerter.
func (a WriterAlerter) Alert(message string) {
	_, _ = fmt.Fprintln(a.W, message)
}

// discardAlerter drops every message.
type discardAlerter struct{}

func (discardAlerter) Alert(string) {}

// AlertMessage returns the text shown for err. Backend errors carry the
// server message unchanged.
func AlertMessage(err error) string {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrMissingInput):
		return MissingInputMessage
	case errors.Is(err, link.ErrInvalidLink):
		return link.InvalidLinkMessage
	}
	return err.Error()
}
