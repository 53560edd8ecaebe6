package service

import (
	"sync"
	"time"

	greenhouse "greenhouse_console"
)

// ActivityLog keeps the audit trail and the forgot-password queue in
// memory; they are diagnostic surfaces, not durable state.
type ActivityLog struct {
	mu       sync.Mutex
	entries  []greenhouse.ActivityEntry
	requests []greenhouse.PasswordRequest
	nextID   int
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{nextID: 1}
}

func (l *ActivityLog) Record(username, action, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, greenhouse.ActivityEntry{
		Timestamp: time.Now().UTC(),
		Username:  username,
		Action:    action,
		Detail:    detail,
	})
}

// Last24h returns entries from the trailing day, newest first.
func (l *ActivityLog) Last24h() []greenhouse.ActivityEntry {
	cutoff := time.Now().Add(-24 * time.Hour)
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []greenhouse.ActivityEntry
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Timestamp.Before(cutoff) {
			break
		}
		out = append(out, l.entries[i])
	}
	return out
}

func (l *ActivityLog) FileRequest(username, message, rememberedPassword string) greenhouse.PasswordRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	req := greenhouse.PasswordRequest{
		ID:                 l.nextID,
		Username:           username,
		Message:            message,
		RememberedPassword: rememberedPassword,
		RequestedAt:        time.Now().UTC(),
	}
	l.nextID++
	l.requests = append(l.requests, req)
	return req
}

func (l *ActivityLog) Pending() []greenhouse.PasswordRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]greenhouse.PasswordRequest, len(l.requests))
	copy(out, l.requests)
	return out
}

// Resolve removes a request from the queue, returning it for approval or
// rejection handling.
func (l *ActivityLog) Resolve(id int) (greenhouse.PasswordRequest, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, req := range l.requests {
		if req.ID == id {
			l.requests = append(l.requests[:i], l.requests[i+1:]...)
			return req, true
		}
	}
	return greenhouse.PasswordRequest{}, false
}
