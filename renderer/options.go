package renderer

type Options struct {
	// Number of progressive iterations; each contributes one sample per
	// unconverged pixel. Zero means render until interrupted (interactive
	// renderers only).
	Iterations uint32

	// Report progress every ReportInterval iterations; 0 disables.
	ReportInterval uint32
}
