package admin

import (
	"errors"
	"log"

	"github.com/Hansade2005/shopsavvy/internal/cart"
)

var ErrNotAuthorized = errors.New("invalid admin credentials")

// Authorizer decides whether credentials grant admin access. The
// interface exists so the static check below can be replaced by a
// real authorization backend without touching call sites.
type Authorizer interface {
	Authorize(email, password string) bool
}

// StaticCredentials compares against a fixed, hardcoded pair. This
// is a known-insecure stand-in kept isolated behind Authorizer; do
// not extend it.
type StaticCredentials struct {
	email    string
	password string
}

func NewStaticCredentials() StaticCredentials {
	return StaticCredentials{
		email:    "admin@shopsavvy.com",
		password: "Admin@1234",
	}
}

func (c StaticCredentials) Authorize(email, password string) bool {
	return email == c.email && password == c.password
}

// Guard gates the admin area. A successful sign-in sets an is-admin
// flag in durable storage, which the admin routes check.
type Guard struct {
	auth    Authorizer
	storage cart.Storage
}

func NewGuard(auth Authorizer, storage cart.Storage) *Guard {
	return &Guard{auth: auth, storage: storage}
}

func (g *Guard) SignIn(owner, email, password string) error {
	if !g.auth.Authorize(email, password) {
		return ErrNotAuthorized
	}
	if err := g.storage.Set(adminKey(owner), "true"); err != nil {
		// Storage failures are non-fatal; the flag just won't
		// survive a restart.
		log.Printf("[Admin] Failed to persist admin flag for %s: %v", owner, err)
	}
	return nil
}

func (g *Guard) SignOut(owner string) {
	if err := g.storage.Delete(adminKey(owner)); err != nil {
		log.Printf("[Admin] Failed to clear admin flag for %s: %v", owner, err)
	}
}

func (g *Guard) IsAdmin(owner string) bool {
	value, ok, err := g.storage.Get(adminKey(owner))
	if err != nil {
		log.Printf("[Admin] Failed to read admin flag for %s: %v", owner, err)
		return false
	}
	return ok && value == "true"
}

func adminKey(owner string) string {
	return "is_admin:" + owner
}
