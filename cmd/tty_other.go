//go:build !linux && !windows

package cmd

import "os"

// isTerminal reports whether f is a character device, which on the remaining
// platforms means an interactive terminal in practice.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
