// Package nickname implements the Nickname Registrar actor: a single
// goroutine owning the set of taken nicknames, serving Login/Logout
// requests serially over a channel so no locking is needed.
package nickname

import (
	"context"

	"github.com/arzg/nunitius/internal/cachemanager"
	"github.com/arzg/nunitius/internal/log"
	"github.com/arzg/nunitius/internal/model"
)

// loginRequest asks the registrar to claim nick for user.
type loginRequest struct {
	nick  string
	user  model.User
	reply chan bool // true if nick was already taken
}

// logoutRequest releases nick. It is a programming error to logout a
// nickname that was never successfully logged in.
type logoutRequest struct {
	nick  string
	reply chan bool // false if nick was never claimed
}

// Registrar owns the set of taken nicknames and serves requests serially
// from a single goroutine, so no lock is needed.
type Registrar struct {
	cache    *cachemanager.InMemoryCacheManager[string, model.User]
	loginCh  chan loginRequest
	logoutCh chan logoutRequest
	done     chan struct{}
}

// New creates a Registrar. Call Run to start serving requests.
func New() *Registrar {
	return &Registrar{
		cache:    cachemanager.NewInMemoryCacheManager[string, model.User]("nickname-registrar", cachemanager.NoExpiration, cachemanager.NoExpiration),
		loginCh:  make(chan loginRequest),
		logoutCh: make(chan logoutRequest),
		done:     make(chan struct{}),
	}
}

// Run serves Login/Logout requests until ctx is cancelled. It must be
// called exactly once, typically in its own goroutine.
func (r *Registrar) Run(ctx context.Context) {
	log.Info(log.CatNickname, "registrar started")
	defer log.Info(log.CatNickname, "registrar stopped")
	defer close(r.done)

	for {
		select {
		case req := <-r.loginCh:
			r.handleLogin(req)
		case req := <-r.logoutCh:
			r.handleLogout(req)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registrar) handleLogin(req loginRequest) {
	_, alreadyTaken := r.cache.Get(context.Background(), req.nick)
	if alreadyTaken {
		log.Debug(log.CatNickname, "login taken", "nick", req.nick)
		req.reply <- true
		return
	}
	r.cache.Set(context.Background(), req.nick, req.user, cachemanager.NoExpiration)
	log.Debug(log.CatNickname, "login succeeded", "nick", req.nick)
	req.reply <- false
}

func (r *Registrar) handleLogout(req logoutRequest) {
	_, found := r.cache.Get(context.Background(), req.nick)
	if !found {
		log.Error(log.CatNickname, "logout of unclaimed nickname", "nick", req.nick)
		req.reply <- false
		return
	}
	if err := r.cache.Delete(context.Background(), req.nick); err != nil {
		log.ErrorErr(log.CatNickname, "failed to delete nickname", err, "nick", req.nick)
	}
	log.Debug(log.CatNickname, "logout", "nick", req.nick)
	req.reply <- true
}

// Login attempts to claim nick for user. Returns true if the nickname was
// already taken by someone else, in which case no claim was made.
func (r *Registrar) Login(nick string, user model.User) bool {
	reply := make(chan bool, 1)
	r.loginCh <- loginRequest{nick: nick, user: user, reply: reply}
	return <-reply
}

// Logout releases nick. It panics if nick was never successfully claimed —
// a double-logout or logout-without-login is a programming error in the
// caller, per the sender handler's single-owner lifecycle.
func (r *Registrar) Logout(nick string) {
	reply := make(chan bool, 1)
	r.logoutCh <- logoutRequest{nick: nick, reply: reply}
	if ok := <-reply; !ok {
		panic("nickname: logout of a nickname that was never claimed: " + nick)
	}
}

// Wait blocks until Run has returned.
func (r *Registrar) Wait() {
	<-r.done
}
