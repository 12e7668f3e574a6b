package approval

import (
	"context"
	"fmt"
	"sync"
)

// Recorder is an in-process Channel that records every operation. It backs
// tests and local runs without a configured transport.
type Recorder struct {
	mu            sync.Mutex
	nextRef       int
	notifications map[string]Notification
	edits         map[string][]string
	deleted       []string

	// FailNotify and FailEdit, when set, are returned by the corresponding
	// operations to exercise failure paths.
	FailNotify error
	FailEdit   error
}

// NewRecorder creates an empty recording channel.
func NewRecorder() *Recorder {
	return &Recorder{
		notifications: make(map[string]Notification),
		edits:         make(map[string][]string),
	}
}

func (r *Recorder) Notify(ctx context.Context, n Notification) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailNotify != nil {
		return "", r.FailNotify
	}
	r.nextRef++
	ref := fmt.Sprintf("notif_%d", r.nextRef)
	r.notifications[ref] = n
	return ref, nil
}

func (r *Recorder) Edit(ctx context.Context, ref, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailEdit != nil {
		return r.FailEdit
	}
	if _, ok := r.notifications[ref]; !ok {
		return fmt.Errorf("unknown notification ref %q", ref)
	}
	r.edits[ref] = append(r.edits[ref], text)
	return nil
}

func (r *Recorder) Delete(ctx context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[ref]; !ok {
		return fmt.Errorf("unknown notification ref %q", ref)
	}
	delete(r.notifications, ref)
	r.deleted = append(r.deleted, ref)
	return nil
}

// NotifyCount returns how many notifications have been sent.
func (r *Recorder) NotifyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextRef
}

// Notification returns the notification stored under ref.
func (r *Recorder) Notification(ref string) (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[ref]
	return n, ok
}

// Edits returns the edit texts applied to ref.
func (r *Recorder) Edits(ref string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.edits[ref]...)
}
