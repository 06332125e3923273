package version

// Version is the current mediasearch release.
const Version = "0.4.0"

// BuildVersion returns the version string for display
func BuildVersion() string {
	return "mediasearch version " + Version
}

// UserAgent returns the default User-Agent sent to the backend.
func UserAgent() string {
	return "mediasearch/" + Version
}
