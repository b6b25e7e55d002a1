package catalog

// Resolve maps a window's reported application id and title to the id
// reported to the shell.
//
// A reported id that names a catalog entry is returned as is. Otherwise the
// first entry, in scan order, whose non-empty Name equals the title wins.
// With no match the reported id is returned unchanged.
func (c *Catalog) Resolve(appID, title string) string {
	if appID != "" {
		if _, ok := c.index[appID]; ok {
			return appID
		}
	}
	if title != "" {
		for _, d := range c.entries {
			if d.Name != "" && d.Name == title {
				return d.AppID
			}
		}
	}
	return appID
}
