package model

import "time"

// General is the connector bucket for changes that name no specific connector.
const General = "General"

// Change types stored with each ConnectorChange.
const (
	ChangeBreaking = "breaking"
	ChangeFeature  = "feature"
)

// ComparisonResult is the payload returned by the compare endpoint.
type ComparisonResult struct {
	FromVersion string                   `json:"from_version"`
	ToVersion   string                   `json:"to_version"`
	Connectors  map[string]ConnectorDiff `json:"connectors"`
}

// ConnectorDiff holds the changes for one connector, in release order.
type ConnectorDiff struct {
	BreakingChanges []ChangeEntry `json:"breaking_changes"`
	NewFeatures     []ChangeEntry `json:"new_features"`
}

// Total is the number of entries shown in the connector's count badge.
func (d ConnectorDiff) Total() int {
	return len(d.BreakingChanges) + len(d.NewFeatures)
}

// ChangeEntry is a single line from a release note.
type ChangeEntry struct {
	Version     string `json:"version"`
	Description string `json:"description"`
}

// ReleaseNotes is what the scraper extracts from one release page.
type ReleaseNotes struct {
	Version           string             `json:"version"`
	BreakingChanges   []string           `json:"breaking_changes,omitempty"`
	NewFeatures       []string           `json:"new_features,omitempty"`
	ConnectorSections []ConnectorSection `json:"connector_sections,omitempty"`
}

// ConnectorSection is a "<Name> connector" heading and the items below it.
type ConnectorSection struct {
	Connector string   `json:"connector"`
	Items     []string `json:"items"`
	Breaking  []string `json:"breaking,omitempty"` // items flagged as breaking within the section
}

// ChangeSet is the raw, version-keyed comparison body that gets cached.
type ChangeSet struct {
	BreakingChanges []VersionItems `json:"breaking_changes"`
	NewFeatures     []VersionItems `json:"new_features"`
}

// VersionItems groups the items of one kind found in one release.
type VersionItems struct {
	Version   string   `json:"version"`
	Connector string   `json:"connector,omitempty"` // set when the items came from a connector section
	Items     []string `json:"items"`
}

// ConnectorChange is a single persisted change attributed to a connector.
type ConnectorChange struct {
	Connector   string    `json:"connector"`
	Version     string    `json:"version"`
	ChangeType  string    `json:"change_type"`
	Description string    `json:"description"`
	Impact      string    `json:"impact,omitempty"` // "high" for breaking, "medium" for features
	CreatedAt   time.Time `json:"created_at"`
}

// ConnectorHistory lists every known change for one connector.
type ConnectorHistory struct {
	Connector       string         `json:"connector"`
	BreakingChanges []HistoryEntry `json:"breaking_changes"`
	Features        []HistoryEntry `json:"features"`
}

// HistoryEntry is a ConnectorChange as reported by the connector history API.
type HistoryEntry struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Impact      string `json:"impact,omitempty"`
	Date        string `json:"date,omitempty"`
}
