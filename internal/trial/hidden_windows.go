//go:build windows

package trial

import "golang.org/x/sys/windows"

// hideFile sets the hidden attribute so the replica does not show up in
// casual Explorer listings. Best-effort; callers ignore failures.
func hideFile(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	return windows.SetFileAttributes(p, windows.FILE_ATTRIBUTE_HIDDEN)
}
