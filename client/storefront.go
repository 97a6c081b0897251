package client

import "net/http"

// Config configures a Storefront. BaseURL is the only required field.
type Config struct {
	BaseURL string

	// HTTPClient overrides the default 5 second timeout client.
	HTTPClient *http.Client

	// KV persists cart, session and bundle state. Defaults to an
	// in-memory store, which forgets everything on restart.
	KV KV

	// OTP sends and checks login codes. Required for Session operations;
	// cart and bundle work without it.
	OTP OTPProvider
}

// Storefront bundles the SDK stores and wires the session lifecycle into the
// cart: login merges the guest cart, logout detaches it.
type Storefront struct {
	Cart    *CartStore
	Session *SessionStore
	Bundle  *BundleList
}

func New(cfg Config) *Storefront {
	kv := cfg.KV
	if kv == nil {
		kv = NewMemoryKV()
	}

	session := newSessionStore(kv, cfg.OTP)
	api := newAPIClient(cfg.BaseURL, cfg.HTTPClient, session.identity)
	cart := newCartStore(api, kv)

	session.onLogin = cart.handleLogin
	session.onLogout = cart.handleLogout

	return &Storefront{
		Cart:    cart,
		Session: session,
		Bundle:  newBundleList(kv),
	}
}
