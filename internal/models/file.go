package models

// FileMatch represents a file whose name matched a search keyword
type FileMatch struct {
	URL   string `json:"url" yaml:"url"`
	Name  string `json:"name" yaml:"name"`
	Size  string `json:"size" yaml:"size"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
	Ext   string `json:"ext" yaml:"ext"`
}

// Classification groups matches into the buckets shown to the user
type Classification struct {
	Images            []FileMatch `json:"images" yaml:"images"`
	Others            []FileMatch `json:"others" yaml:"others"`
	DroppedExtensions []string    `json:"dropped_extensions" yaml:"dropped_extensions"`
	Total             int         `json:"total" yaml:"total"`
}

// Kept returns the number of matches displayed to the user
func (c Classification) Kept() int {
	return len(c.Images) + len(c.Others)
}

// Dropped returns the number of matches hidden by extension policy
func (c Classification) Dropped() int {
	return c.Total - c.Kept()
}

// SearchResponse is the JSON body returned by the search API
type SearchResponse struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Classification `yaml:",inline"`
}
