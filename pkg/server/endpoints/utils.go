package endpoints

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/resource"
)

// maxBodyBytes bounds request bodies on create and update
const maxBodyBytes = 1 << 20

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithServiceError maps errors from resource.Service to a status
// code. Not-found is expected; anything else is a storage failure and is
// logged.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, resource.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	logging.Ctx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}

// readBody reads at most maxBodyBytes of the request body. A larger body
// fails with *http.MaxBytesError.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// decodeJSONBody decodes the request body into dst. An empty body decodes
// as an empty object.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// decodeCreateBody decodes a create body into dst with the server-owned keys
// removed, so whatever the client sent for them cannot fail the decode.
// Keys are matched case-insensitively, as the decoder matches them.
func decodeCreateBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	var fields map[string]json.RawMessage
	if err := decodeJSONBody(w, r, &fields); err != nil {
		return err
	}
	for key := range fields {
		for _, owned := range model.ServerOwnedFields {
			if strings.EqualFold(key, owned) {
				delete(fields, key)
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// respondWithBodyError answers a request whose body could not be decoded
func respondWithBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondWithError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body too large (limit %d bytes)", tooLarge.Limit))
		return
	}
	respondWithError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
}
