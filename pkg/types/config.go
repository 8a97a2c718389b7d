// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SummaryFormat selects the encoding of the summary file.
type SummaryFormat string

const (
	SummaryJSON SummaryFormat = "json"
	SummaryYAML SummaryFormat = "yaml"
)

// FieldMap names the record fields the summarizer and the archive inspect.
// Defaults are the Salesforce KnowledgeArticleVersion API names.
type FieldMap struct {
	// ArticleType, Language, and PublishStatus are tallied per distinct value.
	ArticleType   string `json:"article_type" yaml:"article_type" mapstructure:"article_type"`
	Language      string `json:"language" yaml:"language" mapstructure:"language"`
	PublishStatus string `json:"publish_status" yaml:"publish_status" mapstructure:"publish_status"`

	// VisibleInPkb, VisibleInCsp, and VisibleInPrm are counted when truthy.
	VisibleInPkb string `json:"visible_in_pkb" yaml:"visible_in_pkb" mapstructure:"visible_in_pkb"`
	VisibleInCsp string `json:"visible_in_csp" yaml:"visible_in_csp" mapstructure:"visible_in_csp"`
	VisibleInPrm string `json:"visible_in_prm" yaml:"visible_in_prm" mapstructure:"visible_in_prm"`

	// CreatedDate feeds the summary date range.
	CreatedDate string `json:"created_date" yaml:"created_date" mapstructure:"created_date"`

	// ArticleID identifies an article in the archive; RecordID is the
	// fallback when ArticleID is absent.
	ArticleID string `json:"article_id" yaml:"article_id" mapstructure:"article_id"`
	RecordID  string `json:"record_id" yaml:"record_id" mapstructure:"record_id"`

	// Title and Body are indexed for full-text search in the archive.
	Title string `json:"title" yaml:"title" mapstructure:"title"`
	Body  string `json:"body" yaml:"body" mapstructure:"body"`
}

// DefaultFieldMap returns the Salesforce field names.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		ArticleType:   "ArticleType",
		Language:      "Language",
		PublishStatus: "PublishStatus",
		VisibleInPkb:  "IsVisibleInPkb",
		VisibleInCsp:  "IsVisibleInCsp",
		VisibleInPrm:  "IsVisibleInPrm",
		CreatedDate:   "CreatedDate",
		ArticleID:     "KnowledgeArticleId",
		RecordID:      "Id",
		Title:         "Title",
		Body:          "Summary",
	}
}

// WithDefaults returns a copy of m with every empty name replaced by its
// default, so a config file may override a subset of fields.
func (m FieldMap) WithDefaults() FieldMap {
	d := DefaultFieldMap()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.ArticleType, d.ArticleType)
	fill(&m.Language, d.Language)
	fill(&m.PublishStatus, d.PublishStatus)
	fill(&m.VisibleInPkb, d.VisibleInPkb)
	fill(&m.VisibleInCsp, d.VisibleInCsp)
	fill(&m.VisibleInPrm, d.VisibleInPrm)
	fill(&m.CreatedDate, d.CreatedDate)
	fill(&m.ArticleID, d.ArticleID)
	fill(&m.RecordID, d.RecordID)
	fill(&m.Title, d.Title)
	fill(&m.Body, d.Body)
	return m
}

// ExportConfig holds settings for one conversion run.
type ExportConfig struct {
	// InputPath is the JSON array produced by the org-side Apex script.
	InputPath string `json:"input" yaml:"input"`

	// CSVPath receives the delimited rendering of the records.
	CSVPath string `json:"csv" yaml:"csv"`

	// SummaryPath receives the aggregate statistics.
	SummaryPath string `json:"summary" yaml:"summary"`

	// LogPath is the append-only operation log.
	LogPath string `json:"log" yaml:"log"`

	// SummaryFormat selects json (default) or yaml for the summary file.
	SummaryFormat SummaryFormat `json:"format" yaml:"format"`

	Fields FieldMap `json:"fields" yaml:"fields"`
}

// ArchiveConfig holds settings for the article archive.
type ArchiveConfig struct {
	// ArchiveDir contains articles.db.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	Fields FieldMap `json:"fields" yaml:"fields"`
}
