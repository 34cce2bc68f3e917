package models

// Story represents the SY_STORY table. Story content itself lives elsewhere;
// this registry only carries what syndication and revenue attribution need.
type Story struct {
	StoryID       string `db:"STORY_ID" json:"storyId"`
	StorytellerID string `db:"STORYTELLER_ID" json:"storytellerId"`
	Title         string `db:"TITLE" json:"title"`
	CreatedTime   int64  `db:"CREATED_TIME" json:"createdTime"`
}

// StoryCreateRequest is the payload for registering a story for syndication.
type StoryCreateRequest struct {
	StoryID       string `json:"storyId" binding:"required"`
	StorytellerID string `json:"storytellerId" binding:"required"`
	Title         string `json:"title"`
}
