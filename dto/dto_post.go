package dto

// MediaPayload carries binary content inline; Data is base64 on the wire.
// Source is the client-side reference used to pick image vs video handling.
type MediaPayload struct {
	Source string `json:"source"`
	Data   []byte `json:"data"`
}

type CreatePostRequest struct {
	Content string        `json:"content"`
	Media   *MediaPayload `json:"media,omitempty"`
}

type UpdatePostRequest struct {
	Content string        `json:"content"`
	Media   *MediaPayload `json:"media,omitempty"`
}

type LikeResponse struct {
	PostID string `json:"postId"`
	Liked  bool   `json:"liked"`
}
