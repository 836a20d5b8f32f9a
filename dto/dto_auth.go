package dto

import "linkup/model"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type UpdateProfileRequest struct {
	Name   *string       `json:"name,omitempty"`
	Bio    *string       `json:"bio,omitempty"`
	Avatar *MediaPayload `json:"avatar,omitempty"`
}

type AuthResponse struct {
	Token string         `json:"token"`
	User  model.Identity `json:"user"`
}
