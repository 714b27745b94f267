package model

import "github.com/golang-jwt/jwt/v5"

// LoginRequest is the editor login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token    string `json:"token"`
	EditorID string `json:"editorId"`
}

// EditorClaims are the JWT claims for a content editor
type EditorClaims struct {
	EditorID string `json:"editorId"`
	jwt.RegisteredClaims
}
