package handler

import (
	"net/http"

	"github.com/chama-dev/chama/backend/internal/navigation"
	"github.com/chama-dev/chama/backend/internal/session"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	me, _ := session.FromContext(r.Context()).CurrentIdentity()
	h.successResponse(w, r, "profile loaded", me)
}

func (h *Handler) GetNavigation(w http.ResponseWriter, r *http.Request) {
	nav, err := navigation.ForSession(session.FromContext(r.Context()))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "navigation loaded", nav)
}
