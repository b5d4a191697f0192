package shell

// Notifier broadcasts that file associations, and with them icons, changed
type Notifier interface {
	NotifyAssociationsChanged()
}

// NotifierFunc adapts a plain function to Notifier
type NotifierFunc func()

// NotifyAssociationsChanged calls f
func (f NotifierFunc) NotifyAssociationsChanged() { f() }
