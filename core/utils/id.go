package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short lowercase id usable in URLs.
func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 8)
	if err != nil {
		return ""
	}
	return id
}

// NewRequestID returns a 21 character nanoid for request tracing.
func NewRequestID() string {
	id, err := gonanoid.New()
	if err != nil {
		return GenerateID()
	}
	return id
}
