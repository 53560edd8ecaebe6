package panel

import "greenhouse_console/internal/logger"

// Notifier surfaces operator-facing notifications. Critical carries
// blocking priority, Warning is ambient, Info is plain.
type Notifier interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	Critical(msg string)
}

// LogNotifier renders notifications through the structured log, which is
// the console daemon's display surface.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Info(msg string)    { n.log.Infow("notice", "msg", msg) }
func (n *LogNotifier) Warning(msg string) { n.log.Warnw("notice", "msg", msg) }
func (n *LogNotifier) Error(msg string)   { n.log.Errorw("notice", "msg", msg) }
func (n *LogNotifier) Critical(msg string) {
	n.log.Errorw("notice", "msg", msg, "priority", "blocking")
}
