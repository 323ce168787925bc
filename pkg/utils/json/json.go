package json

import "github.com/bytedance/sonic"

// Package json routes serialization through sonic so every subsystem shares
// one JSON implementation.

var (
	// Marshal serializes v to JSON.
	Marshal = sonic.Marshal
	// Unmarshal deserializes JSON data into v.
	Unmarshal = sonic.Unmarshal
	// MarshalString serializes v to a JSON string.
	MarshalString = sonic.MarshalString
	// UnmarshalString deserializes a JSON string into v.
	UnmarshalString = sonic.UnmarshalString
	// Valid reports whether data is valid JSON.
	Valid = sonic.Valid
)
