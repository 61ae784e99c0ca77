package signal

import (
	"fmt"

	"govigil/domain/core"
)

// ContingencyTable is the 2x2 drug/event count table underlying all
// disproportionality statistics:
//
//	A: drug & event    B: drug, not event
//	C: not drug, event D: neither
//
// Immutable once constructed; build one per drug-event pair from upstream
// case aggregation.
type ContingencyTable struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
	C int64 `json:"c"`
	D int64 `json:"d"`
}

// NewContingencyTable validates and constructs a table. All cells must be
// non-negative and the total must be positive.
func NewContingencyTable(a, b, c, d int64) (ContingencyTable, error) {
	if a < 0 || b < 0 || c < 0 || d < 0 {
		return ContingencyTable{}, fmt.Errorf("%w: negative cell (a=%d b=%d c=%d d=%d)", core.ErrInvalidTable, a, b, c, d)
	}
	t := ContingencyTable{A: a, B: b, C: c, D: d}
	if t.N() == 0 {
		return ContingencyTable{}, fmt.Errorf("%w: total count is zero", core.ErrInvalidTable)
	}
	return t, nil
}

// N is the total report count across all four cells.
func (t ContingencyTable) N() int64 {
	return t.A + t.B + t.C + t.D
}

// Expected is the expected value of cell A under independence:
// (a+b)(a+c)/N.
func (t ContingencyTable) Expected() float64 {
	n := t.N()
	if n == 0 {
		return 0
	}
	return float64(t.A+t.B) * float64(t.A+t.C) / float64(n)
}

func (t ContingencyTable) String() string {
	return fmt.Sprintf("[a=%d b=%d c=%d d=%d]", t.A, t.B, t.C, t.D)
}
