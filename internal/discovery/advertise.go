// Package discovery locates sibling worker processes through small port
// advertisement files in a shared directory, probing each advertised port
// for a self-description.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// advertSuffix names advertisement files. The file stem is the advertised
// port, which is collision-free across simultaneously running processes.
const advertSuffix = ".port"

// Advertise writes this process's port advertisement file and returns a
// cleanup function that removes it on shutdown. Stale files from crashed
// processes are tolerated by scanners, which skip unreachable ports.
func Advertise(dir string, port int) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create advertisement dir: %w", err)
	}
	path := filepath.Join(dir, strconv.Itoa(port)+advertSuffix)
	if err := os.WriteFile(path, []byte(strconv.Itoa(port)), 0o644); err != nil {
		return nil, fmt.Errorf("write advertisement: %w", err)
	}
	return func() error {
		return os.Remove(path)
	}, nil
}
