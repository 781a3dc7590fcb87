package index

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
)

// document is the on-disk TOML layout:
//
//	[packages]
//	"Newtonsoft.Json" = []
//	"Microsoft.AspNet.SignalR" = ["Microsoft.AspNet.SignalR.Core", "Microsoft.AspNet.SignalR.JS"]
type document struct {
	Packages map[string][]string `toml:"packages"`
}

// Load reads a TOML index file.
func Load(path string, opts Options) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "index file %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Decode(f, opts)
}

// Decode reads a TOML index from r. Packages keep the order in which they
// appear in the document, so the expansion order follows the file.
func Decode(r io.Reader, opts Options) (*Index, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidIndex, err, "decode index")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidIndex, "unknown key %q", undecoded[0].String())
	}

	records := make([]Record, 0, len(doc.Packages))
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "packages" {
			continue
		}
		id := key[1]
		records = append(records, Record{ID: id, Dependencies: doc.Packages[id]})
	}
	return New(records, opts), nil
}

// Encode writes the index to w in the format read by [Decode].
func (i *Index) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := toml.NewEncoder(bw).Encode(document{Packages: i.Map()}); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return bw.Flush()
}
