package models

// DisplaySettings is the waiting-room display configuration. Last write wins;
// there is no lifecycle beyond that.
type DisplaySettings struct {
	VideoURL string `json:"video_url"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}
