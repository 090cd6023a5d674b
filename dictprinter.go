package bej

import (
	"fmt"
	"io"
	"strings"
)

// DumpDictionary writes a human-readable tree of d's entries to w,
// starting at the root.
func DumpDictionary(w io.Writer, d *Dictionary) error {
	root, err := d.Root()
	if err != nil {
		return err
	}
	return dumpEntry(w, d, root, 0)
}

func dumpEntry(w io.Writer, d *Dictionary, e Entry, depth int) error {
	indent := strings.Repeat("  ", depth)
	name := e.Name
	if !e.HasName {
		name = "<unnamed>"
	}

	if _, err := fmt.Fprintf(w, "%s%s %s (seq=%d)\n", indent, e.Format, name, e.Sequence); err != nil {
		return err
	}

	if e.ChildCount == 0 {
		return nil
	}

	if e.IsArrayArchetypeSet() {
		archetype, err := d.Archetype(e)
		if err != nil {
			return err
		}
		return dumpEntry(w, d, archetype, depth+1)
	}

	c := newCursor(d, uint(e.ChildOffset), e.ChildCount)
	for {
		child, ok, err := c.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := dumpEntry(w, d, child, depth+1); err != nil {
			return err
		}
	}
}
