package core

// Logger is implemented by any logging service.
// args may contain errors, maps of extra data and the user the log entry is related to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
