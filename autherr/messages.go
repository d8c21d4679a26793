package autherr

// Message is the user-facing text shown for one error kind.
type Message struct {
	Text            string
	Troubleshooting []string
}

var messages = map[Type]Message{
	TypeTokenMissing: {
		Text: "You are not logged in. Please log in to continue.",
		Troubleshooting: []string{
			"Log in with your registered phone number",
			"If you just logged in, reload the page and try again",
		},
	},
	TypeTokenExpired: {
		Text: "Your session has expired. Please log in again.",
		Troubleshooting: []string{
			"Log in again to start a new session",
			"Unsaved changes from the expired session are not recoverable",
		},
	},
	TypeTokenInvalid: {
		Text: "Your session is no longer valid. Please log in again.",
		Troubleshooting: []string{
			"Log in again to refresh your credentials",
			"If this keeps happening, clear your saved session and retry",
		},
	},
	TypeRefreshFailed: {
		Text: "We could not renew your session. Please log in again.",
		Troubleshooting: []string{
			"Log in again to continue where you left off",
			"Check that your device clock is set correctly",
		},
	},
	TypeNetworkError: {
		Text: "Cannot reach the server. Please check your connection and try again.",
		Troubleshooting: []string{
			"Check your internet connection",
			"Retry in a few moments; your session is still active",
		},
	},
	TypeUnauthorized: {
		Text: "You are not authorized to perform this action.",
		Troubleshooting: []string{
			"Contact your agency owner if you believe you need access",
			"Log in again if your role was recently changed",
		},
	},
}

// MessageFor returns the fixed user-facing message for the error kind.
// Unknown kinds fall back to the UNAUTHORIZED message.
func MessageFor(t Type) Message {
	if m, ok := messages[t]; ok {
		return m
	}
	return messages[TypeUnauthorized]
}
