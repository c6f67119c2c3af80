package handlers

import (
	"encoding/json"
	"net/http"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func toJSON(storage map[string]any, payload Payload) {
	storage[payload.Key] = payload.Payload
}

func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	storage := make(map[string]any)
	for _, pl := range payload {
		toJSON(storage, pl)
	}
	responseWithBody(w, code, storage)
}

// responseWithBody пишет произвольное значение, например DTO или список
func responseWithBody(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code, toPayload("error", message))
}
