package reminder

import (
	"errors"
	"log"
	"sync"
)

// ErrPermissionDenied is returned when reminding without a granted permission
var ErrPermissionDenied = errors.New("notification permission not granted")

// Permission mirrors the three states of a notification permission prompt
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	}
	return "default"
}

// Notifier asks for permission to notify and delivers reminders
type Notifier interface {
	RequestPermission() (Permission, error)
	Remind(due int) error
}

// LogNotifier is a permission stub that writes reminders to the log.
// The permission is decided once, on the first request.
type LogNotifier struct {
	mu         sync.Mutex
	allow      bool
	permission Permission
}

// NewLogNotifier creates a notifier whose permission prompt answers allow
func NewLogNotifier(allow bool) *LogNotifier {
	return &LogNotifier{allow: allow}
}

// RequestPermission answers the prompt, or returns the earlier answer
func (n *LogNotifier) RequestPermission() (Permission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.permission != PermissionDefault {
		return n.permission, nil
	}
	if n.allow {
		n.permission = PermissionGranted
		log.Println("Notification permission granted.")
	} else {
		n.permission = PermissionDenied
		log.Println("Notification permission denied.")
	}
	return n.permission, nil
}

// Permission returns the current permission state
func (n *LogNotifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

// Remind logs the number of due revisions
func (n *LogNotifier) Remind(due int) error {
	if n.Permission() != PermissionGranted {
		return ErrPermissionDenied
	}
	log.Printf("Reminder: %d revision(s) due", due)
	return nil
}
