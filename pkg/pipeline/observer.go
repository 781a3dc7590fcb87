package pipeline

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treedepth/pkg/tree"
)

// logObserver forwards build diagnostics to a charm logger: dives at debug,
// unresolved references and cycles at warn.
type logObserver struct {
	logger *log.Logger
}

func (o logObserver) Dive(n *tree.Node) {
	o.logger.Debug("dive", "package", n.ID, "depth", n.Depth)
}

func (o logObserver) Missing(from *tree.Node, id string) {
	o.logger.Warn("referenced package not found", "package", id, "required_by", from.ID, "depth", from.Depth+1)
}

func (o logObserver) Cycle(from *tree.Node, id string) {
	o.logger.Warn("circular reference", "package", id, "path", strings.Join(append(from.Path(), id), " -> "))
}

var _ tree.Observer = logObserver{}
