package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chama-dev/chama/backend/internal/domain"
	"github.com/chama-dev/chama/backend/internal/session"
)

func (h *Handler) GetAllMembers(w http.ResponseWriter, r *http.Request) {
	me, _ := session.FromContext(r.Context()).CurrentIdentity()

	members, err := h.repository.GetIdentitiesByGroupID(r.Context(), me.GroupID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "members loaded", members)
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(MemberInfoCtx).(*domain.Identity)
	h.successResponse(w, r, "member loaded", member)
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  *string `json:"name" validate:"omitempty,min=1"`
		Email *string `json:"email" validate:"omitempty,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	member := r.Context().Value(MemberInfoCtx).(*domain.Identity)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			h.fieldError(w, r, http.StatusBadRequest, "name", "name cannot be blank")
			return
		}
		member.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !strings.EqualFold(email, member.Email) {
			// taken by another identity or reserved by a pending officer slot
			exists, err := h.repository.CheckEmailIfExists(r.Context(), email)
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}
			if exists {
				h.fieldError(w, r, http.StatusConflict, "email", "email is already in use")
				return
			}
		}
		member.Email = email
	}

	if err := h.repository.UpdateIdentity(r.Context(), member); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "identities_email_key":
			h.fieldError(w, r, http.StatusConflict, "email", "email is already in use")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusConflict, "member was changed by someone else, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "member updated", member)
}
