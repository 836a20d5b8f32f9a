package repository

import "linkup/internal/docstore"

// collection names
const (
	ColPosts    = "posts"
	ColUsers    = "users"
	ColChats    = "chats"
	ColMessages = "messages"
	ColResets   = "password_resets"
)

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, el := range list {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func anySlice(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return nil
}

func asDoc(v any) (docstore.Document, bool) {
	switch doc := v.(type) {
	case docstore.Document:
		return doc, true
	case map[string]any:
		return docstore.Document(doc), true
	}
	return nil, false
}

func toAny(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
