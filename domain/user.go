package domain

// Identity is the authenticated user as known to the web client.
// The auth service may echo the password back on login; it is dropped
// before an Identity is built.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Credentials are what the user types into the login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
