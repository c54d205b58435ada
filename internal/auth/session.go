// Package auth provides the identity side of a taskdeck session.
package auth

import (
	"errors"
	"strings"
	"sync"
)

type User struct {
	UID         string
	DisplayName string
}

// Session reports the signed-in user and notifies subscribers whenever the
// user signs in or out. The callback receives nil after sign-out.
type Session interface {
	CurrentUser() (User, bool)
	Subscribe(fn func(*User)) (unsubscribe func())
}

// Local is an in-process session used by the terminal client, where the
// user is named in config or on the command line.
type Local struct {
	mu     sync.Mutex
	user   *User
	nextID int
	subs   map[int]func(*User)
}

var _ Session = (*Local)(nil)

func NewLocal() *Local {
	return &Local{subs: map[int]func(*User){}}
}

func (l *Local) CurrentUser() (User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.user == nil {
		return User{}, false
	}
	return *l.user, true
}

func (l *Local) SignIn(u User) error {
	u.UID = strings.TrimSpace(u.UID)
	if u.UID == "" {
		return errors.New("user id is empty")
	}
	l.mu.Lock()
	l.user = &u
	subs := l.snapshot()
	l.mu.Unlock()
	for _, fn := range subs {
		fn(&u)
	}
	return nil
}

func (l *Local) SignOut() {
	l.mu.Lock()
	if l.user == nil {
		l.mu.Unlock()
		return
	}
	l.user = nil
	subs := l.snapshot()
	l.mu.Unlock()
	for _, fn := range subs {
		fn(nil)
	}
}

func (l *Local) Subscribe(fn func(*User)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// callers hold l.mu
func (l *Local) snapshot() []func(*User) {
	out := make([]func(*User), 0, len(l.subs))
	for _, fn := range l.subs {
		out = append(out, fn)
	}
	return out
}
