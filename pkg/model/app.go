package model

// AppEntry is one row of a station's app selection view: an installed app
// reported by the client merged with the current whitelist.
type AppEntry struct {
	PackageName string
	AppName     string
	Allowed     bool
}
