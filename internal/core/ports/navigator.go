package ports

// Navigator moves the client to another location. Whether that is a full
// reload or an in-app transition is up to the implementation.
type Navigator interface {
	Navigate(path string)
	Current() string
}

// LogoutNotifier lets the session controller hear about forced logouts
// without the HTTP layer depending on it.
type LogoutNotifier interface {
	SetLogoutCallback(fn func())
}
