package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/audit"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/identity"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/resource"
)

// RegisterCollectionEndpoints registers list/create on /{plural} and
// get/update/delete on /{plural}/{id} for one record kind. P is the patch
// type decoded from PUT bodies.
func RegisterCollectionEndpoints[T any, PT model.Record[T], P model.Patch[T]](router *mux.Router, kind model.Kind, svc *resource.Service[T, PT]) {
	plural := "/" + kind.Collection()

	router.HandleFunc(plural, handleList(svc)).Methods(http.MethodGet)
	router.HandleFunc(plural, handleCreate(svc)).Methods(http.MethodPost)
	router.HandleFunc(plural+"/{id}", handleGet(svc)).Methods(http.MethodGet)
	router.HandleFunc(plural+"/{id}", handleUpdate[T, PT, P](svc)).Methods(http.MethodPut)
	router.HandleFunc(plural+"/{id}", handleDelete(svc)).Methods(http.MethodDelete)
}

func handleList[T any, PT model.Record[T]](svc *resource.Service[T, PT]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.List(r.Context())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, records)
	}
}

func handleGet[T any, PT model.Record[T]](svc *resource.Service[T, PT]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, record)
	}
}

func handleCreate[T any, PT model.Record[T]](svc *resource.Service[T, PT]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event := newEvent(r, audit.OperationCreate, svc.Collection(), "")

		var fields T
		if err := decodeCreateBody(w, r, &fields); err != nil {
			respondWithBodyError(w, err)
			return
		}

		created, err := svc.Create(r.Context(), fields)
		if err != nil {
			logEvent(event, err)
			respondWithServiceError(w, r, err)
			return
		}

		event.RecordID = PT(&created).GetID()
		logEvent(event, nil)
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleUpdate[T any, PT model.Record[T], P model.Patch[T]](svc *resource.Service[T, PT]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		event := newEvent(r, audit.OperationUpdate, svc.Collection(), id)

		var patch P
		if err := decodeJSONBody(w, r, &patch); err != nil {
			respondWithBodyError(w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, patch)
		logEvent(event, err)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	}
}

func handleDelete[T any, PT model.Record[T]](svc *resource.Service[T, PT]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		event := newEvent(r, audit.OperationDelete, svc.Collection(), id)

		removed, err := svc.Delete(r.Context(), id)
		logEvent(event, err)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, removed)
	}
}

func newEvent(r *http.Request, op audit.Operation, collection, id string) audit.RecordEvent {
	return audit.RecordEvent{
		Operation:  op,
		Collection: collection,
		RecordID:   id,
		UserID:     identity.Subject(r.Context()),
		ClientIP:   identity.ClientIP(r),
	}
}

func logEvent(event audit.RecordEvent, err error) {
	event.Success = err == nil
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}
