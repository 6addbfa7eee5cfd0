// Package registration turns the officer sign-up form into a Group aggregate
// and its chairman identity.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/chama-dev/chama/backend/internal/domain"
	"github.com/chama-dev/chama/backend/internal/session"
)

const DefaultMinSecretLength = 8

// Input mirrors the registration form. Field order is the order in which
// problems are reported.
type Input struct {
	GroupName        string `json:"group_name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	AccountNo        string `json:"account_no" validate:"required"`
	ChairmanName     string `json:"chairman_name" validate:"required"`
	ChairmanEmail    string `json:"chairman_email" validate:"required,email"`
	ChairmanPassword string `json:"chairman_password" validate:"required"`
	SecretaryName    string `json:"secretary_name" validate:"required"`
	SecretaryEmail   string `json:"secretary_email" validate:"required,email"`
	TreasurerName    string `json:"treasurer_name" validate:"required"`
	TreasurerEmail   string `json:"treasurer_email" validate:"required,email"`
	Document         string `json:"document" validate:"required"`
}

func (in Input) normalized() Input {
	out := in
	for _, f := range []*string{
		&out.GroupName, &out.Email, &out.AccountNo,
		&out.ChairmanName, &out.ChairmanEmail,
		&out.SecretaryName, &out.SecretaryEmail,
		&out.TreasurerName, &out.TreasurerEmail,
		&out.Document,
	} {
		*f = strings.TrimSpace(*f)
	}
	return out
}

// Store durably saves a new group together with its chairman. Implementations
// must write everything in one transaction.
type Store interface {
	SaveRegistration(ctx context.Context, group *domain.Group, chairmanSecret string) error
}

// Inviter asks a pending officer to activate their account.
type Inviter interface {
	Invite(ctx context.Context, slot domain.OfficerSlot, groupID string) error
}

// Directory answers whether an email already belongs to an identity.
type Directory interface {
	CheckEmailIfExists(ctx context.Context, email string) (bool, error)
}

type Policy struct {
	MinSecretLength int
}

type Result struct {
	Group    *domain.Group
	Chairman domain.Identity
	// Persisted is false when the store failed; the aggregate is still valid.
	Persisted        bool
	InvitationErrors []error
}

type Workflow struct {
	policy     Policy
	validate   *validator.Validate
	translator ut.Translator
	store      Store
	inviter    Inviter
	directory  Directory
}

// NewWorkflow builds a workflow. store, inviter and directory are optional;
// a nil collaborator is skipped.
func NewWorkflow(policy Policy, store Store, inviter Inviter, directory Directory) (*Workflow, error) {
	if policy.MinSecretLength <= 0 {
		policy.MinSecretLength = DefaultMinSecretLength
	}

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

	return &Workflow{
		policy:     policy,
		validate:   validate,
		translator: trans,
		store:      store,
		inviter:    inviter,
		directory:  directory,
	}, nil
}

// Register validates the input, assembles the group and its chairman, and
// logs the chairman into sess. Rejected input leaves sess untouched and
// returns a nil result.
//
// A store failure still returns the assembled result, with Persisted unset,
// together with a *domain.PersistenceError.
func (wf *Workflow) Register(ctx context.Context, sess *session.Context, in Input) (*Result, error) {
	in = in.normalized()

	if err := wf.check(ctx, in); err != nil {
		return nil, err
	}

	group := assemble(in, time.Now().UTC())
	res := &Result{
		Group:    group,
		Chairman: group.Chairman,
	}

	sess.Login(group.Chairman)

	if wf.store != nil {
		if err := wf.store.SaveRegistration(ctx, group, in.ChairmanPassword); err != nil {
			return res, &domain.PersistenceError{Op: "registration", Err: err}
		}
	}
	res.Persisted = true

	if wf.inviter != nil {
		for _, slot := range group.PendingSlots() {
			if err := wf.inviter.Invite(ctx, slot, group.ID); err != nil {
				slog.Warn("officer invitation failed", "group", group.ID, "role", slot.Role, "error", err)
				res.InvitationErrors = append(res.InvitationErrors, fmt.Errorf("invite %s: %w", slot.Role, err))
			}
		}
	}

	return res, nil
}

// Validate runs the checks of Register without assembling or saving anything.
func (wf *Workflow) Validate(ctx context.Context, in Input) error {
	return wf.check(ctx, in.normalized())
}

func (wf *Workflow) check(ctx context.Context, in Input) error {
	if err := wf.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &domain.ValidationError{Field: verrs[0].Field(), Reason: verrs[0].Translate(wf.translator)}
		}
		return err
	}

	if strings.TrimSpace(in.ChairmanPassword) == "" {
		return &domain.WeakCredentialError{Field: "chairman_password", Reason: "must not be blank"}
	}
	if n := utf8.RuneCountInString(in.ChairmanPassword); n < wf.policy.MinSecretLength {
		return &domain.WeakCredentialError{
			Field:  "chairman_password",
			Reason: fmt.Sprintf("must be at least %d characters", wf.policy.MinSecretLength),
		}
	}

	officers := []struct {
		field string
		email string
	}{
		{"chairman_email", in.ChairmanEmail},
		{"secretary_email", in.SecretaryEmail},
		{"treasurer_email", in.TreasurerEmail},
	}

	for i := 1; i < len(officers); i++ {
		for j := 0; j < i; j++ {
			if strings.EqualFold(officers[i].email, officers[j].email) {
				return &domain.DuplicateEmailError{Field: officers[i].field, Email: officers[i].email}
			}
		}
	}

	if wf.directory != nil {
		for _, o := range officers {
			exists, err := wf.directory.CheckEmailIfExists(ctx, o.email)
			if err != nil {
				return &domain.PersistenceError{Op: "check email", Err: err}
			}
			if exists {
				return &domain.DuplicateEmailError{Field: o.field, Email: o.email}
			}
		}
	}

	return nil
}

func assemble(in Input, now time.Time) *domain.Group {
	groupID := domain.NewID()
	total := 0.0

	chairman := domain.Identity{
		ID:                 domain.NewID(),
		GroupID:            groupID,
		Name:               in.ChairmanName,
		Email:              in.ChairmanEmail,
		Role:               domain.RoleChairman,
		TotalContributions: &total,
		CreatedAt:          now,
	}

	return &domain.Group{
		ID:         groupID,
		Name:       in.GroupName,
		Email:      in.Email,
		AccountNo:  in.AccountNo,
		DocumentID: in.Document,
		Chairman:   chairman,
		Secretary: domain.OfficerSlot{
			Role:   domain.RoleSecretary,
			Name:   in.SecretaryName,
			Email:  in.SecretaryEmail,
			Status: domain.SlotPendingActivation,
		},
		Treasurer: domain.OfficerSlot{
			Role:   domain.RoleTreasurer,
			Name:   in.TreasurerName,
			Email:  in.TreasurerEmail,
			Status: domain.SlotPendingActivation,
		},
		CreatedAt: now,
	}
}
