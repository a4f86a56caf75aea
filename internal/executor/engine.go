package executor

import (
	"context"
	"errors"
	"strings"

	"tradeplane/internal/trade"
)

// DryRunEngine is a stand-in generation engine for deployments without the
// external legality engine attached. It accepts any non-empty specification
// and echoes it back as the generated item, taking the first line's first
// token as the species.
type DryRunEngine struct{}

// Generate echoes the specification as a generated item.
func (DryRunEngine) Generate(ctx context.Context, itemSpec string, identity *trade.Identity) (*trade.GeneratedItem, error) {
	spec := strings.TrimSpace(itemSpec)
	if spec == "" {
		return nil, errors.New("empty item specification")
	}
	firstLine, _, _ := strings.Cut(spec, "\n")
	species, _, _ := strings.Cut(strings.TrimSpace(firstLine), " ")
	return &trade.GeneratedItem{
		Species: species,
		Summary: firstLine,
		Data:    []byte(spec),
	}, nil
}
