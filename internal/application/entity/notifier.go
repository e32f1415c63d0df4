package entity

// Notifier surfaces messages to the user. Alert is for failures that need
// acknowledgement; Notify for confirmations.
type Notifier interface {
	Alert(msg string)
	Notify(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Alert(string)  {}
func (nopNotifier) Notify(string) {}

// NopNotifier discards every message.
func NopNotifier() Notifier {
	return nopNotifier{}
}
