package discovery

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tradeplane/internal/rpc"
	"tradeplane/internal/trade"
	"tradeplane/pkg/api"
)

// Prober asks an advertised port for its self-description. The routing RPC
// client satisfies this.
type Prober interface {
	Info(addr string) (api.InstanceInfo, error)
}

// Directory discovers sibling worker processes. A scan reads every
// advertisement file, probes the advertised port and records the variant it
// serves. One unreachable sibling never aborts discovery of the others, so
// a full scan is bounded by N instances times the prober's timeouts.
type Directory struct {
	dir    string
	prober Prober
	logger *slog.Logger
}

// New creates a directory over the shared advertisement dir.
func New(dir string, prober Prober, logger *slog.Logger) *Directory {
	return &Directory{dir: dir, prober: prober, logger: logger}
}

// ListInstances scans the advertisement directory and probes each entry.
// Unreadable files and unreachable or malformed siblings are skipped and
// logged.
func (d *Directory) ListInstances() []api.InstanceInfo {
	files, err := os.ReadDir(d.dir)
	if err != nil {
		d.logger.Warn("cannot read advertisement dir", "dir", d.dir, "error", err)
		return nil
	}

	var instances []api.InstanceInfo
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), advertSuffix) {
			continue
		}
		port, err := d.readPort(f.Name())
		if err != nil {
			d.logger.Warn("skipping malformed advertisement", "file", f.Name(), "error", err)
			continue
		}
		info, err := d.prober.Info(net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			d.logger.Warn("skipping unreachable instance", "port", port, "error", err)
			continue
		}
		info.Port = port
		instances = append(instances, info)
	}
	return instances
}

// FindVariant locates the instance serving the requested game variant.
// Matching is case-insensitive and normalizes historical variant spellings.
func (d *Directory) FindVariant(variant trade.GameVariant) (api.InstanceInfo, bool) {
	for _, inst := range d.ListInstances() {
		if trade.SameVariant(inst.GameVariant, string(variant)) {
			return inst, true
		}
	}
	return api.InstanceInfo{}, false
}

func (d *Directory) readPort(name string) (int, error) {
	content, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(content)))
}

var _ Prober = (*rpc.Client)(nil)
