package listing

// Settings are the deployment-wide list options every screen shares.
type Settings struct {
	PageSize   int
	MaxVisible int
	OnStale    func(screen string)
}

// Config builds a screen Config from s.
func (s Settings) Config(name, title string, search bool, columns []string, filters ...FilterDef) Config {
	return Config{
		Name:       name,
		Title:      title,
		PageSize:   s.PageSize,
		MaxVisible: s.MaxVisible,
		Search:     search,
		Filters:    filters,
		Columns:    columns,
		OnStale:    s.OnStale,
	}
}
