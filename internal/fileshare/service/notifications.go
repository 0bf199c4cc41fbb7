package service

import (
	"sync"
	"time"
)

const (
	notificationCapacity        = 50
	DefaultVisibleNotifications = 5
)

type Notification struct {
	At      time.Time
	Message string
}

// NotificationLog is a bounded, newest-last record of admin actions.
type NotificationLog struct {
	Visible int
	Now     func() time.Time

	mu      sync.Mutex
	entries []Notification
}

func NewNotificationLog(visible int) *NotificationLog {
	if visible <= 0 {
		visible = DefaultVisibleNotifications
	}
	return &NotificationLog{Visible: visible, Now: time.Now}
}

// Add appends msg, dropping the oldest entry when full.
func (l *NotificationLog) Add(msg string) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, Notification{At: now, Message: msg})
	if over := len(l.entries) - notificationCapacity; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// Recent returns up to Visible entries, newest first.
func (l *NotificationLog) Recent() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := min(l.Visible, len(l.entries))
	out := make([]Notification, 0, n)
	for i := len(l.entries) - 1; i >= len(l.entries)-n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Len is the number of retained entries.
func (l *NotificationLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
