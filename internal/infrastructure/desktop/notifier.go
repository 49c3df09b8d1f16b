package desktop

import (
	"context"
	"errors"
	"sync"

	"github.com/gen2brain/beeep"

	"auction-sync/pkg/logger"
)

// ErrPermissionDenied is returned once the user has refused desktop
// notifications for this session.
var ErrPermissionDenied = errors.New("desktop notifications not permitted")

type permission int

const (
	permissionDefault permission = iota
	permissionGranted
	permissionDenied
)

// PermissionRequester asks the user whether desktop notifications may be
// shown.
type PermissionRequester func(ctx context.Context) (bool, error)

// AllowWhen returns a requester that answers with a fixed decision, used for
// the desktop.enabled setting.
func AllowWhen(enabled bool) PermissionRequester {
	return func(context.Context) (bool, error) {
		return enabled, nil
	}
}

type sendFunc func(title, message, icon string) error

// Notifier shows OS notifications. Permission is requested lazily on the
// first notification and at most once per session; a denial sticks until
// Reset.
type Notifier struct {
	request PermissionRequester
	send    sendFunc
	icon    string
	logger  logger.Logger

	mu         sync.Mutex
	permission permission
}

func NewNotifier(request PermissionRequester, icon string, log logger.Logger) *Notifier {
	return &Notifier{
		request: request,
		send: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
		icon:   icon,
		logger: log,
	}
}

func (n *Notifier) Notify(ctx context.Context, title, message string) error {
	granted, err := n.permitted(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return ErrPermissionDenied
	}

	if err := n.send(title, message, n.icon); err != nil {
		n.logger.Warn("Desktop notification failed", "title", title, "error", err)
		return err
	}
	return nil
}

func (n *Notifier) permitted(ctx context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.permission {
	case permissionGranted:
		return true, nil
	case permissionDenied:
		return false, nil
	}

	granted, err := n.request(ctx)
	if err != nil {
		n.logger.Warn("Desktop permission request failed", "error", err)
		return false, err
	}
	if granted {
		n.permission = permissionGranted
	} else {
		n.permission = permissionDenied
		n.logger.Info("Desktop notifications denied for this session")
	}
	return granted, nil
}

// Reset forgets the permission decision, called when a session ends.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.permission = permissionDefault
}
