package api

import (
	"encoding/json"
	"net/http"

	"supersoniq-insights/internal/keystore"
	"supersoniq-insights/internal/types"
)

type keyStatus struct {
	Provider string `json:"provider"`
	Name     string `json:"name,omitempty"`
	Stored   bool   `json:"stored"`
	Masked   string `json:"masked,omitempty"`
	KeyLink  string `json:"key_link,omitempty"`
}

func (s *Server) keyStatus(provider, key string) keyStatus {
	st := keyStatus{Provider: provider, Stored: key != ""}
	if p, ok := s.Catalog.Lookup(provider); ok {
		st.Name = p.Name
		st.KeyLink = p.KeyLink
	}
	if key != "" {
		st.Masked = keystore.Mask(key)
	}
	return st
}

func (s *Server) getKey(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	key, err := s.Keys.Retrieve(r.Context(), provider)
	if err != nil {
		s.Log.WithRequest(r).WithError(err).Warn("key lookup failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.keyStatus(provider, key))
}

func (s *Server) putKey(w http.ResponseWriter, r *http.Request) {
	reqLog := s.Log.WithRequest(r).WithField("provider", r.PathValue("provider"))
	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &types.ValidationError{Field: "body", Reason: "expected JSON body {\"key\": \"...\"}"})
		return
	}
	provider := r.PathValue("provider")
	if err := s.Keys.Store(r.Context(), provider, body.Key); err != nil {
		reqLog.WithError(err).Warn("key not stored")
		writeError(w, err)
		return
	}
	key, err := s.Keys.Retrieve(r.Context(), provider)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.keyStatus(provider, key))
}

func (s *Server) deleteKey(w http.ResponseWriter, r *http.Request) {
	if err := s.Keys.Clear(r.Context(), r.PathValue("provider")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type providerBody struct {
	Provider string `json:"provider"`
}

func (s *Server) getProvider(w http.ResponseWriter, r *http.Request) {
	p, err := s.Keys.RetrieveProvider(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, providerBody{Provider: p})
}

func (s *Server) putProvider(w http.ResponseWriter, r *http.Request) {
	var body providerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &types.ValidationError{Field: "body", Reason: "expected JSON body {\"provider\": \"...\"}"})
		return
	}
	if err := s.Keys.StoreProvider(r.Context(), body.Provider); err != nil {
		writeError(w, err)
		return
	}
	s.Log.WithRequest(r).WithField("provider", body.Provider).Info("insights provider selected")
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) deleteProvider(w http.ResponseWriter, r *http.Request) {
	if err := s.Keys.ClearProvider(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
