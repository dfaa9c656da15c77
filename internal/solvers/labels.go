// Package solvers maps solver addresses to the human labels shown in
// tables and reports.
package solvers

import "strings"

// labels keys are lowercase solver addresses.
var labels = map[string]string{
	"0xa21740833858985e4d801533a808786d3647fb83": "Naive",
	"0xe58c68679e7aab8ef83bf37e88b18eb1f6e30e22": "Baseline",
	"0xb20b86c4e6deeb432a22d773a221898bbbd03036": "Gnosis_1inch",
	"0xe92f359e6f05564849afa933ce8f62b8007a1d5d": "Gnosis_0x",
	"0x6fa201c3aff9f1e4897ed14c7326cf27548d9c35": "Otex",
	"0xdd2e786980cd58d9db49a7654d6bdff2ed1a1d4f": "PLM",
	"0x97dd6a023b06ba4722af8af775ec3c6ded1b6e9d": "Barter",
	"0x047a2fbe8aef590d4eb8942426a24970af02e2e5": "Prycto",
	"0xc9ec550bea1c64d779124b23a26292cc223327b6": "Quasimodo",
	"0x149d0f9282333681ee41d30589824b2798e9fb47": "Laertes",
}

// Label returns the display label for a solver address, or a truncated
// address form for unknown solvers.
func Label(addr string) string {
	if l, ok := labels[strings.ToLower(addr)]; ok {
		return l
	}
	return Short(addr)
}

// Short renders an address as 0x1234…abcd.
func Short(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// Known reports whether the address has a configured label.
func Known(addr string) bool {
	_, ok := labels[strings.ToLower(addr)]
	return ok
}
