package chain

import "github.com/sirupsen/logrus"

// Logger is a thin wrapper over a *logrus.Entry that tags every line with the
// owning pallet, matching the ServiceEngine.LogWithFields pattern in the
// reference corpus (one structured entry per component, fields attached
// rather than formatted into the message).
type Logger struct {
	entry *logrus.Entry
}

// NewLogger builds a pallet-scoped logger on top of a shared *logrus.Logger.
func NewLogger(base *logrus.Logger, pallet string) *Logger {
	if base == nil {
		base = logrus.StandardLogger()
	}
	return &Logger{entry: base.WithField("pallet", pallet)}
}

// WithBlock returns a logger tagged with the current block number.
func (l *Logger) WithBlock(block BlockNumber) *logrus.Entry {
	return l.entry.WithField("block", uint64(block))
}

// WithFields returns a logger tagged with arbitrary structured fields.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.entry.WithFields(fields)
}

func (l *Logger) Info(msg string, fields logrus.Fields)  { l.entry.WithFields(fields).Info(msg) }
func (l *Logger) Warn(msg string, fields logrus.Fields)  { l.entry.WithFields(fields).Warn(msg) }
func (l *Logger) Error(msg string, fields logrus.Fields) { l.entry.WithFields(fields).Error(msg) }
