//go:build !windows

package shell

// NewSystemNotifier returns a no-op broadcaster
func NewSystemNotifier() Notifier {
	return NotifierFunc(func() {})
}
