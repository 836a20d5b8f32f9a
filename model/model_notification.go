package model

import "time"

type Notification struct {
	ID    string            `json:"id"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Date  time.Time         `json:"date"`
	Read  bool              `json:"read"`
}
