package adapter

import (
	"github.com/gen2brain/beeep"
	"github.com/m-mizutani/goerr/v2"
)

// Notifier is the notification surface. The tag identifies the meeting a
// notification belongs to so the presentation layer can de-duplicate.
type Notifier interface {
	HasPermission() bool
	RequestPermission() bool
	Emit(title, body, tag string) error
}

// desktopNotifier emits OS desktop notifications. Unlike a browser there
// is no runtime permission broker, so the granted bit is explicit state
// set from configuration.
type desktopNotifier struct {
	granted bool
}

// NewDesktop creates a desktop Notifier. granted controls whether Emit
// actually fires; the scheduler checks it through HasPermission.
func NewDesktop(granted bool) Notifier {
	return &desktopNotifier{granted: granted}
}

func (n *desktopNotifier) HasPermission() bool {
	return n.granted
}

func (n *desktopNotifier) RequestPermission() bool {
	n.granted = true
	return true
}

func (n *desktopNotifier) Emit(title, body, tag string) error {
	if !n.granted {
		return nil
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		return goerr.Wrap(err, "failed to emit notification", goerr.V("tag", tag))
	}
	return nil
}

// discardNotifier drops everything. Used for headless runs and tests.
type discardNotifier struct{}

// NewDiscard creates a Notifier without permission that never emits.
func NewDiscard() Notifier {
	return &discardNotifier{}
}

func (discardNotifier) HasPermission() bool                { return false }
func (discardNotifier) RequestPermission() bool            { return false }
func (discardNotifier) Emit(title, body, tag string) error { return nil }
