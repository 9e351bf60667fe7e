package symbol

import (
	"fmt"
	"io"
	"sync"

	"github.com/clbanning/mxj/v2"
)

// AttrPrefix marks XML attributes in decoded trees, e.g. "@handlerType".
const AttrPrefix = "@"

var configureDecoder = sync.OnceFunc(func() {
	mxj.SetAttrPrefix(AttrPrefix)
})

// DecodeXML parses an XML box dump into a Tree. The document root element is
// the single top-level entry; attributes carry the "@" prefix and element text
// next to attributes is stored under "#text".
func DecodeXML(r io.Reader) (*Tree, error) {
	configureDecoder()

	m, err := mxj.NewMapXmlReader(r)
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	return FromMap(map[string]any(m)), nil
}
