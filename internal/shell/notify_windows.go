//go:build windows

package shell

import "golang.org/x/sys/windows"

const (
	shcneAssocChanged = 0x08000000
	shcnfIDList       = 0x0000
)

var (
	shell32            = windows.NewLazySystemDLL("shell32.dll")
	procSHChangeNotify = shell32.NewProc("SHChangeNotify")
)

type shellNotifier struct{}

// NewSystemNotifier returns the SHChangeNotify broadcaster
func NewSystemNotifier() Notifier {
	return shellNotifier{}
}

func (shellNotifier) NotifyAssociationsChanged() {
	if procSHChangeNotify.Find() != nil {
		return
	}
	procSHChangeNotify.Call(shcneAssocChanged, shcnfIDList, 0, 0)
}
