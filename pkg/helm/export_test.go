package helm

// Gunzip is an exported alias of [gunzip] for testing.
var Gunzip = gunzip

// Inbound is an exported alias of [inbound] for testing.
var Inbound = inbound

// NormalizeChartName is an exported alias of [normalizeChartName] for testing.
var NormalizeChartName = normalizeChartName

// NewTestPulledChart creates a [PulledChart] over a local chart path for
// testing.
func NewTestPulledChart(c *Client, chartName, path string) *PulledChart {
	return &PulledChart{
		client: c,
		chart:  chartName,
		path:   path,
	}
}
