package identity

import "errors"

// Envelope is the standard error envelope handed to callers. A 401 or 403
// from the provider additionally instructs the caller to log out and
// redirect to the login path.
type Envelope struct {
	Logout     bool   `json:"logout,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Error      string `json:"error"`
}

// statusCarrier is satisfied by errors produced at the HTTP boundary
// (provider.CallError). The typed variant replaces shape-probing of
// unknown values at each call site.
type statusCarrier interface {
	HTTPStatus() int
}

// MapError normalizes any caught error into the standard envelope.
func MapError(err error) Envelope {
	if err == nil {
		return Envelope{}
	}

	env := Envelope{Error: err.Error()}

	var sc statusCarrier
	if errors.As(err, &sc) {
		switch sc.HTTPStatus() {
		case 401, 403:
			env.Logout = true
			env.RedirectTo = LoginPath
		}
	}
	return env
}
