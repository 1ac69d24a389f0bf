package identity

import "context"

// Provider is the identity backend behind the session store. Exactly
// one implementation is selected at startup; the session store never
// branches between backends per call.
type Provider interface {
	// SignIn authenticates an existing identity.
	SignIn(ctx context.Context, email, secret string) (Identity, error)

	// SignUp registers a new identity and signs it in.
	SignUp(ctx context.Context, email, secret string) (Identity, error)

	// SignOut invalidates the backend session, if any.
	SignOut(ctx context.Context) error

	// Session returns the identity of an existing backend session,
	// or false when there is none.
	Session(ctx context.Context) (Identity, bool, error)
}
