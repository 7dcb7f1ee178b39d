// Package poi is the client for the points-of-interest metadata API.
package poi

// POI is the metadata of one functional area of the building.
type POI struct {
	ID          string         `json:"_id"`
	UUID        string         `json:"uuid,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Type        string         `json:"type,omitempty"`
	Status      string         `json:"status,omitempty"`
	Hours       string         `json:"hours,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	FloorID     string         `json:"floor_id,omitempty"`
	Categories  []string       `json:"categories,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// Placeholder returns the metadata shown for an area the API could not
// describe.
func Placeholder(areaID string) POI {
	return POI{
		Name:        areaID,
		Description: "Selected area on the 3D map. Details about this area and its facilities will appear here.",
		Type:        "Area",
		Status:      "Open",
		Hours:       "Open daily 6:00 - 22:00",
		Categories:  []string{"Services"},
	}
}
