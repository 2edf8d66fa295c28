package lfmap

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Dump writes a human-readable, non-authoritative summary of every
// generation reachable from head to w: its number, slot count,
// approximate alive count, and full/migrating status. It is a debug
// aid only, out of scope for correctness, and takes no guard, so its
// output is a best-effort snapshot under concurrent mutation.
func (m *Map[K, V]) Dump(w io.Writer) error {
	gen := 0
	for g := m.head.Load(); g != nil; g = g.Next() {
		status := "active"
		if g.IsFull() {
			status = "full/migrating"
		}
		_, err := fmt.Fprintf(w, "generation %d: size=%s alive=%s status=%s copied=%s\n",
			g.GenNumber(),
			humanize.Comma(int64(g.Size())),
			humanize.Comma(g.ApproxAlive()),
			status,
			humanize.Comma(int64(g.CopiedCount())),
		)
		if err != nil {
			return err
		}
		gen++
	}
	if gen == 0 {
		_, err := fmt.Fprintln(w, "(no generations)")
		return err
	}
	return nil
}
