package privacy

import "fmt"

// Error messages in this package identify categories, locales, and lengths
// only. They never include scanned content, so errors are safe to log.

// ConfigurationError reports an invalid pattern registration. It is raised
// at startup or during administrative registration, never at scan time.
type ConfigurationError struct {
	Recognizer string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid recognizer configuration %q: %s", e.Recognizer, e.Reason)
}

// ContentTooLargeError reports input exceeding the documented size bound.
// The caller decides whether to truncate and retry or to reject the document.
type ContentTooLargeError struct {
	Size  int
	Limit int
}

func (e *ContentTooLargeError) Error() string {
	return fmt.Sprintf("content size %d exceeds limit %d bytes", e.Size, e.Limit)
}

// UnknownLocaleError reports a requested locale with no registered patterns.
// Callers may fall back to universal-only scanning.
type UnknownLocaleError struct {
	Locale string
}

func (e *UnknownLocaleError) Error() string {
	return fmt.Sprintf("no patterns registered for locale %q", e.Locale)
}

// EncodingNormalizationError reports input that cannot be brought to a
// consistent Unicode form. The input is rejected rather than mis-scanned,
// since a silent failure here would be a false-negative hole.
type EncodingNormalizationError struct {
	Length int
}

func (e *EncodingNormalizationError) Error() string {
	return fmt.Sprintf("input of %d bytes is not valid UTF-8 and cannot be normalized", e.Length)
}
