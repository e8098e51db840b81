package response

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func OK(w http.ResponseWriter, data any) error {
	return JSON(w, http.StatusOK, Resp{Message: "Success", Data: data})
}

func Created(w http.ResponseWriter, data any) error {
	return JSON(w, http.StatusCreated, Resp{Message: "Success", Data: data})
}

func Error(w http.ResponseWriter, err error) error {
	statusCode, body := ParseHTTPError(err)
	return JSON(w, statusCode, body)
}
