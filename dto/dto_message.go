package dto

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SendMessageResponse struct {
	ChatID string `json:"chatId"`
}
