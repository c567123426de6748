package bird

// Media is an image, video or animated GIF attached to a tweet.
type Media struct {
	Type       string `json:"type"`
	URL        string `json:"url"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	VideoURL   string `json:"videoUrl,omitempty"`
}

type Author struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Tweet is the raw object emitted by `bird bookmarks --all --json`.
// IDs are snowflakes beyond the 53-bit safe-integer range and stay
// strings throughout.
type Tweet struct {
	ID                string  `json:"id"`
	Text              string  `json:"text"`
	AuthorID          string  `json:"authorId"`
	Author            Author  `json:"author"`
	ConversationID    string  `json:"conversationId"`
	CreatedAt         string  `json:"createdAt"` // "Sun Feb 22 18:55:16 +0000 2026"
	LikeCount         int     `json:"likeCount"`
	ReplyCount        int     `json:"replyCount"`
	RetweetCount      int     `json:"retweetCount"`
	InReplyToStatusID string  `json:"inReplyToStatusId,omitempty"`
	Media             []Media `json:"media,omitempty"`
	QuotedTweet       *Tweet  `json:"quotedTweet,omitempty"`
}

// Response is the top-level shape of `bird bookmarks --all --json`.
type Response struct {
	Tweets     []Tweet `json:"tweets"`
	NextCursor string  `json:"nextCursor,omitempty"`
}
