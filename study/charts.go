package study

// AxisSpec is one chart axis.
type AxisSpec struct {
	Title  string `yaml:"title"`
	Italic bool   `yaml:"italic,omitempty"`
	Bold   bool   `yaml:"bold,omitempty"`
}

// ChartSpec carries the presentation options of a chart next to its data.
type ChartSpec struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Title       string   `yaml:"title"`
	HAxis       AxisSpec `yaml:"h_axis"`
	VAxis       AxisSpec `yaml:"v_axis"`
	LineWidth   int      `yaml:"line_width"`
	PointSize   *int     `yaml:"point_size,omitempty"`
	Colors      []string `yaml:"colors,omitempty"`
	SeriesNames []string `yaml:"series_names,omitempty"`
}

func boldAxis(title string) AxisSpec { return AxisSpec{Title: title, Bold: true} }

// NDVIByYearChart plots one line per year against day of year.
func NDVIByYearChart() ChartSpec {
	return ChartSpec{
		Name:      "ndvi_doy_by_year",
		Type:      "LineChart",
		Title:     "Yearly NDVI Value by Day of Year for Crop",
		HAxis:     boldAxis("Day of year"),
		VAxis:     boldAxis("NDVI (x1e4)"),
		LineWidth: 5,
		Colors:    []string{"FF9999", "FFCC99", "FFFF99", "CCFF99", "99FF99"},
	}
}

// NDVIAverageChart plots the across-year mean against day of year.
func NDVIAverageChart() ChartSpec {
	return ChartSpec{
		Name:        "ndvi_doy_average",
		Type:        "LineChart",
		Title:       "Average NDVI by Day of Year for Crop",
		HAxis:       boldAxis("Day of year"),
		VAxis:       boldAxis("NDVI (x1e4)"),
		LineWidth:   5,
		Colors:      []string{"e37d05"},
		SeriesNames: []string{NDVIBand},
	}
}

// CloudCoverChart plots granule cloud cover over time.
func CloudCoverChart() ChartSpec {
	zero := 0
	return ChartSpec{
		Name:      "cloud_cover",
		Type:      "LineChart",
		Title:     "Cloud cover",
		HAxis:     AxisSpec{Title: "Date"},
		VAxis:     AxisSpec{Title: "Clouds"},
		LineWidth: 1,
		PointSize: &zero,
	}
}
