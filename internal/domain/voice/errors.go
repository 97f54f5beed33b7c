package voice

import "errors"

// ErrRecognizerUnavailable is returned by recognizers when no microphone or
// speech service can be reached.
var ErrRecognizerUnavailable = errors.New("speech recognizer unavailable")
