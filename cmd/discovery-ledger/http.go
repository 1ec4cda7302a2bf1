// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/te6481-4/Legal-Discovery-Fhe/ledger"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

// actorHeader carries the caller identity. The daemon trusts its
// front proxy to authenticate actors; the ledger core only compares
// the resulting identity strings.
const actorHeader = "X-Discovery-Actor"

type server struct {
	core      *ledger.Core
	encryptor fhe.Encryptor
	local     *oracle.Local
	logger    *slog.Logger
}

func newServer(core *ledger.Core, encryptor fhe.Encryptor, local *oracle.Local, logger *slog.Logger) *server {
	return &server{core: core, encryptor: encryptor, local: local, logger: logger}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/admin/transfer", s.handleTransfer)
	mux.HandleFunc("POST /v1/admin/submitters", s.handleAddSubmitter)
	mux.HandleFunc("DELETE /v1/admin/submitters", s.handleRemoveSubmitter)
	mux.HandleFunc("POST /v1/admin/pause", s.handlePause)
	mux.HandleFunc("POST /v1/admin/unpause", s.handleUnpause)
	mux.HandleFunc("POST /v1/admin/cooldown", s.handleSetCooldown)

	mux.HandleFunc("POST /v1/batches", s.handleOpenBatch)
	mux.HandleFunc("POST /v1/batches/close", s.handleCloseBatch)
	mux.HandleFunc("GET /v1/batches/current", s.handleCurrentBatch)
	mux.HandleFunc("GET /v1/batches/{id}/documents", s.handleBatchDocuments)

	mux.HandleFunc("POST /v1/documents", s.handleSubmitDocument)
	mux.HandleFunc("POST /v1/encrypt", s.handleEncrypt)

	mux.HandleFunc("POST /v1/search", s.handleSearch)
	mux.HandleFunc("GET /v1/search/{id}", s.handleSearchResult)

	mux.HandleFunc("POST /v1/oracle/result", s.handleOracleResult)
	mux.HandleFunc("POST /v1/oracle/deliver", s.handleOracleDeliver)

	return mux
}

// writeJSON writes a JSON response body with the given status.
func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

// writeError maps ledger error codes onto HTTP statuses and emits a
// structured error body.
func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	var lerr *ledger.Error
	if errors.As(err, &lerr) {
		code = string(lerr.Code)
		switch lerr.Code {
		case ledger.CodeAuthorization, ledger.CodeAuthenticity:
			status = http.StatusForbidden
		case ledger.CodeValidation:
			status = http.StatusBadRequest
		case ledger.CodeRateLimit:
			status = http.StatusTooManyRequests
		case ledger.CodeLifecycle, ledger.CodeReplay:
			status = http.StatusConflict
		case ledger.CodeIntegrity:
			status = http.StatusUnprocessableEntity
		case ledger.CodeNotFound:
			status = http.StatusNotFound
		}
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error(), "code": code})
}

// actor extracts the caller identity header. Operations that mutate
// state refuse requests without one.
func (s *server) actor(w http.ResponseWriter, r *http.Request) (ledger.Actor, bool) {
	actor := r.Header.Get(actorHeader)
	if actor == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("missing %s header", actorHeader),
		})
		return "", false
	}
	return ledger.Actor(actor), true
}

// decode parses the JSON request body into v.
func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func (s *server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req struct {
		NewAdministrator string `json:"new_administrator"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.core.TransferAdministrator(actor, ledger.Actor(req.NewAdministrator)); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"administrator": req.NewAdministrator})
}

func (s *server) handleAddSubmitter(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req struct {
		Actor string `json:"actor"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.core.AddSubmitter(actor, ledger.Actor(req.Actor)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRemoveSubmitter(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req struct {
		Actor string `json:"actor"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.core.RemoveSubmitter(actor, ledger.Actor(req.Actor)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handlePause(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	if err := s.core.Pause(actor); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	if err := s.core.Unpause(actor); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSetCooldown(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req struct {
		Seconds uint64 `json:"seconds"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.core.SetCooldown(actor, req.Seconds); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleOpenBatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, err := s.core.OpenNewBatch(actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]uint64{"batch_id": uint64(id)})
}

func (s *server) handleCloseBatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	if err := s.core.CloseCurrentBatch(actor); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCurrentBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := s.core.CurrentBatch()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"batch_id": uint64(batch.ID),
		"open":     batch.Open,
	})
}

func (s *server) handleBatchDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed batch id"})
		return
	}
	documents, err := s.core.BatchDocuments(ledger.BatchID(id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]map[string]string, len(documents))
	for i, doc := range documents {
		out[i] = map[string]string{
			"id_handle":      doc.IDHandle.String(),
			"content_handle": doc.ContentHandle.String(),
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (s *server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req struct {
		IDHandle      string `json:"id_handle"`
		ContentHandle string `json:"content_handle"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	idHandle, err := fhe.ParseHandle(req.IDHandle)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed id_handle"})
		return
	}
	contentHandle, err := fhe.ParseHandle(req.ContentHandle)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed content_handle"})
		return
	}
	if err := s.core.SubmitDocument(actor, idHandle, contentHandle); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEncrypt encrypts a keyword server-side and returns the
// handle. Deployments where clients encrypt locally against the
// public key do not expose this route.
func (s *server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r); !ok {
		return
	}
	var req struct {
		Keyword string `json:"keyword"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Keyword == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword must not be empty"})
		return
	}
	handle, err := s.encryptor.EncryptKeyword(req.Keyword)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"handle": handle.String()})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req struct {
		BatchID     uint64 `json:"batch_id"`
		QueryHandle string `json:"query_handle"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	queryHandle, err := fhe.ParseHandle(req.QueryHandle)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed query_handle"})
		return
	}
	id, err := s.core.SearchKeywordInBatch(r.Context(), actor, ledger.BatchID(req.BatchID), queryHandle)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"request_id": string(id)})
}

func (s *server) handleSearchResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.core.SearchResult(oracle.RequestID(r.PathValue("id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	body := map[string]any{
		"request_id": string(result.ID),
		"batch_id":   uint64(result.BatchID),
		"processed":  result.Processed,
	}
	if result.Processed {
		body["count"] = result.Count
	}
	s.writeJSON(w, http.StatusOK, body)
}

// handleOracleResult is the callback surface for an external oracle
// deployment. Anyone can call it; only a correctly signed result for
// a known, unprocessed request has any effect.
func (s *server) handleOracleResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestID string `json:"request_id"`
		Payload   string `json:"payload"`
		Proof     string `json:"proof"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed payload encoding"})
		return
	}
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed proof encoding"})
		return
	}
	count, err := s.core.DeliverDecryptionResult(oracle.RequestID(req.RequestID), payload, proof)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

// handleOracleDeliver drains the in-process oracle immediately instead
// of waiting for the background delivery tick.
func (s *server) handleOracleDeliver(w http.ResponseWriter, r *http.Request) {
	delivered := 0
	err := s.local.DeliverPending(func(id oracle.RequestID, payload, proof []byte) error {
		if _, err := s.core.DeliverDecryptionResult(id, payload, proof); err != nil {
			return err
		}
		delivered++
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"delivered": delivered})
}
