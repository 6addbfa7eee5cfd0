package handler

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/chama-dev/chama/backend/internal/config"
	"github.com/chama-dev/chama/backend/internal/domain"
	"github.com/chama-dev/chama/backend/internal/registration"
	"github.com/chama-dev/chama/backend/internal/storage"
)

// Repository is the read/update side of the store used by the HTTP layer.
// Registration writes go through the workflow.
type Repository interface {
	GetIdentityByID(ctx context.Context, id string) (*domain.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*domain.Identity, string, error)
	GetIdentitiesByGroupID(ctx context.Context, groupID string) ([]*domain.Identity, error)
	GetGroupByID(ctx context.Context, id string) (*domain.Group, error)
	UpdateIdentity(ctx context.Context, identity *domain.Identity) error
	CheckEmailIfExists(ctx context.Context, email string) (bool, error)
}

type InvitationLookup interface {
	Lookup(ctx context.Context, token string) (*domain.Invitation, error)
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Repository
	translator  ut.Translator
	workflow    *registration.Workflow
	documents   storage.DocumentStore
	invitations InvitationLookup

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Repository, wf *registration.Workflow, docs storage.DocumentStore, invitations InvitationLookup) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		workflow:    wf,
		documents:   docs,
		invitations: invitations,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Post("/groups", h.RegisterGroup)
	h.Mux.Get("/invitations/{token}", h.GetInvitation)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// everything below needs a logged-in identity
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/my-info", h.GetMyInfo)
		r.Get("/my-group", h.GetMyGroup)
		r.Get("/navigation", h.GetNavigation)

		r.Route("/members", func(r chi.Router) {
			r.With(h.RequireCapability(domain.CapabilityViewMemberList)).Get("/", h.GetAllMembers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.RequireCapability(domain.CapabilityManageMemberDirectory))
				r.Use(h.memberInfo)
				r.Get("/", h.GetMember)
				r.Patch("/", h.UpdateMember)
			})
		})
	})
}
