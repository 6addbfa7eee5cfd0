package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/chama-dev/chama/backend/internal/domain"
	"github.com/chama-dev/chama/backend/internal/navigation"
	"github.com/chama-dev/chama/backend/internal/registration"
	"github.com/chama-dev/chama/backend/internal/session"
)

func (h *Handler) registrationError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		duplicateErr  *domain.DuplicateEmailError
		weakErr       *domain.WeakCredentialError
		storeErr      *domain.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		h.fieldError(w, r, http.StatusBadRequest, validationErr.Field, validationErr.Reason)
	case errors.As(err, &duplicateErr):
		h.fieldError(w, r, http.StatusConflict, duplicateErr.Field, "email is already in use")
	case errors.As(err, &weakErr):
		h.fieldError(w, r, http.StatusBadRequest, weakErr.Field, weakErr.Reason)
	case errors.As(err, &storeErr):
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "identities_email_key" {
			h.fieldError(w, r, http.StatusConflict, "chairman_email", "email is already in use")
			return
		}
		h.logInternalServerError(r, err)
		h.errorResponse(w, r, http.StatusServiceUnavailable, "the group could not be saved, please try again")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) RegisterGroup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(h.config.Server.MaxUploadSize); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid registration form")
		return
	}

	in := registration.Input{
		GroupName:        r.FormValue("group_name"),
		Email:            r.FormValue("email"),
		AccountNo:        r.FormValue("account_no"),
		ChairmanName:     r.FormValue("chairman_name"),
		ChairmanEmail:    r.FormValue("chairman_email"),
		ChairmanPassword: r.FormValue("chairman_password"),
		SecretaryName:    r.FormValue("secretary_name"),
		SecretaryEmail:   r.FormValue("secretary_email"),
		TreasurerName:    r.FormValue("treasurer_name"),
		TreasurerEmail:   r.FormValue("treasurer_email"),
	}

	file, header, err := r.FormFile("document")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// reported by validation as a missing document
	case err != nil:
		h.errorResponse(w, r, http.StatusBadRequest, "invalid document upload")
		return
	default:
		defer file.Close()
		in.Document = header.Filename
	}

	// reject bad input before anything is uploaded
	if err := h.workflow.Validate(r.Context(), in); err != nil {
		h.registrationError(w, r, err)
		return
	}

	documentID, err := h.documents.StoreDocument(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	in.Document = documentID

	sess := session.New()
	res, err := h.workflow.Register(r.Context(), sess, in)
	if err != nil {
		var storeErr *domain.PersistenceError
		var pgErr *pgconn.PgError
		if res == nil || !errors.As(err, &storeErr) || (errors.As(err, &pgErr) && pgErr.ConstraintName == "identities_email_key") {
			h.registrationError(w, r, err)
			return
		}

		// assembled but not saved: report it, issue no token
		h.logInternalServerError(r, err)
		h.writeJSON(w, r, http.StatusServiceUnavailable, Response{
			Success: false,
			Message: "the group could not be saved, please try again",
			Data: map[string]any{
				"groupID":   res.Group.ID,
				"persisted": false,
			},
		})
		return
	}

	chairman, _ := sess.CurrentIdentity()
	if err := h.issueToken(w, chairman); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	nav, err := navigation.ForSession(sess)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "group registered", map[string]any{
		"group":              res.Group,
		"navigation":         nav,
		"invitationFailures": len(res.InvitationErrors),
	})
}

func (h *Handler) GetMyGroup(w http.ResponseWriter, r *http.Request) {
	me, _ := session.FromContext(r.Context()).CurrentIdentity()

	group, err := h.repository.GetGroupByID(r.Context(), me.GroupID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "group not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "group loaded", group)
}

func (h *Handler) GetInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitations.Lookup(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.errorResponse(w, r, http.StatusNotFound, "invitation not found or expired")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "invitation loaded", inv)
}
