// Package histogram tabulates observations into fixed, contiguous bins.
//
// Bins are defined by strictly increasing break points:
//
//	bp, _ := histogram.CreateBreakPointsRange(0, 3, 3) // [0 1 2 3]
//	h, _ := histogram.New(bp)
//	h.CollectAll(0.5, 1.5, 1.5, 2.5, -1, 5)
//	h.BinCounts()      // [1 2 1]
//	h.UnderflowCount() // 1
//	h.OverflowCount()  // 1
//
// Cumulative queries come in two flavours that must not be confused: the
// CumulativeBin* methods count binned observations only, while the
// Cumulative{Count,Fraction}* methods include underflow (and overflow once the
// query passes the last bin) against TotalCount.
package histogram
