package registration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chama-dev/chama/backend/internal/domain"
	"github.com/chama-dev/chama/backend/internal/navigation"
	"github.com/chama-dev/chama/backend/internal/session"
)

type fakeStore struct {
	mu     sync.Mutex
	err    error
	groups []*domain.Group
	secret string
}

func (s *fakeStore) SaveRegistration(_ context.Context, g *domain.Group, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.groups = append(s.groups, g)
	s.secret = secret
	return nil
}

type fakeInviter struct {
	failFor domain.Role
	invited []domain.OfficerSlot
	groupID string
}

func (f *fakeInviter) Invite(_ context.Context, slot domain.OfficerSlot, groupID string) error {
	if slot.Role == f.failFor {
		return errors.New("queue unavailable")
	}
	f.invited = append(f.invited, slot)
	f.groupID = groupID
	return nil
}

type fakeDirectory struct {
	emails map[string]bool
	err    error
}

func (d *fakeDirectory) CheckEmailIfExists(_ context.Context, email string) (bool, error) {
	return d.emails[email], d.err
}

func umojaInput() Input {
	return Input{
		GroupName:        "Umoja Chama",
		Email:            "umoja@x.com",
		AccountNo:        "001122",
		ChairmanName:     "Asha",
		ChairmanEmail:    "asha@x.com",
		ChairmanPassword: "secretpw1",
		SecretaryName:    "Beno",
		SecretaryEmail:   "beno@x.com",
		TreasurerName:    "Cleo",
		TreasurerEmail:   "cleo@x.com",
		Document:         "doc-1",
	}
}

func newWorkflow(t *testing.T, store Store, inviter Inviter, dir Directory) *Workflow {
	t.Helper()
	wf, err := NewWorkflow(Policy{MinSecretLength: 8}, store, inviter, dir)
	require.NoError(t, err)
	return wf
}

func TestRegister_UmojaChama(t *testing.T) {
	store := &fakeStore{}
	inviter := &fakeInviter{}
	wf := newWorkflow(t, store, inviter, nil)
	sess := session.New()

	res, err := wf.Register(context.Background(), sess, umojaInput())
	require.NoError(t, err)
	require.NotNil(t, res)

	g := res.Group
	assert.Equal(t, "Umoja Chama", g.Name)
	assert.Equal(t, "umoja@x.com", g.Email)
	assert.Equal(t, "001122", g.AccountNo)
	assert.Equal(t, "doc-1", g.DocumentID)
	assert.Equal(t, domain.RoleChairman, g.Chairman.Role)
	assert.Equal(t, "asha@x.com", g.Chairman.Email)
	assert.Equal(t, "beno@x.com", g.Secretary.Email)
	assert.Equal(t, domain.SlotPendingActivation, g.Secretary.Status)
	assert.Equal(t, "cleo@x.com", g.Treasurer.Email)
	assert.Equal(t, domain.SlotPendingActivation, g.Treasurer.Status)

	assert.NotEmpty(t, g.ID)
	assert.NotEqual(t, g.ID, g.Chairman.ID)
	assert.Equal(t, g.ID, g.Chairman.GroupID)
	require.NotNil(t, g.Chairman.TotalContributions)
	assert.Zero(t, *g.Chairman.TotalContributions)
	assert.False(t, g.CreatedAt.IsZero())
	assert.Equal(t, g.Chairman, res.Chairman)

	current, ok := sess.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, res.Chairman, current)

	assert.True(t, res.Persisted)
	require.Len(t, store.groups, 1)
	assert.Equal(t, "secretpw1", store.secret)

	require.Len(t, inviter.invited, 2)
	assert.Equal(t, domain.RoleSecretary, inviter.invited[0].Role)
	assert.Equal(t, domain.RoleTreasurer, inviter.invited[1].Role)
	assert.Equal(t, g.ID, inviter.groupID)
	assert.Empty(t, res.InvitationErrors)

	nav, err := navigation.For(current)
	require.NoError(t, err)
	caps := make([]domain.Capability, 0, len(nav))
	for _, e := range nav {
		caps = append(caps, e.Capability)
	}
	assert.Contains(t, caps, domain.CapabilityManageMemberDirectory)
}

func TestRegister_MissingField(t *testing.T) {
	tests := []struct {
		field string
		clear func(in *Input)
	}{
		{"group_name", func(in *Input) { in.GroupName = "" }},
		{"email", func(in *Input) { in.Email = "   " }},
		{"account_no", func(in *Input) { in.AccountNo = "" }},
		{"chairman_name", func(in *Input) { in.ChairmanName = "" }},
		{"chairman_email", func(in *Input) { in.ChairmanEmail = "" }},
		{"chairman_password", func(in *Input) { in.ChairmanPassword = "" }},
		{"secretary_name", func(in *Input) { in.SecretaryName = "\t" }},
		{"secretary_email", func(in *Input) { in.SecretaryEmail = "" }},
		{"treasurer_name", func(in *Input) { in.TreasurerName = "" }},
		{"treasurer_email", func(in *Input) { in.TreasurerEmail = "" }},
		{"document", func(in *Input) { in.Document = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			store := &fakeStore{}
			inviter := &fakeInviter{}
			wf := newWorkflow(t, store, inviter, nil)
			sess := session.New()

			in := umojaInput()
			tt.clear(&in)

			res, err := wf.Register(context.Background(), sess, in)
			assert.Nil(t, res)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Reason)

			_, ok := sess.CurrentIdentity()
			assert.False(t, ok)
			assert.Empty(t, store.groups)
			assert.Empty(t, inviter.invited)
		})
	}
}

func TestRegister_FirstInvalidFieldReported(t *testing.T) {
	wf := newWorkflow(t, nil, nil, nil)

	in := umojaInput()
	in.ChairmanEmail = ""
	in.TreasurerEmail = ""
	in.Document = ""

	_, err := wf.Register(context.Background(), session.New(), in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "chairman_email", verr.Field)
}

func TestRegister_MalformedEmail(t *testing.T) {
	wf := newWorkflow(t, nil, nil, nil)

	in := umojaInput()
	in.SecretaryEmail = "beno-at-x"

	_, err := wf.Register(context.Background(), session.New(), in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "secretary_email", verr.Field)
}

func TestRegister_TrimsInput(t *testing.T) {
	wf := newWorkflow(t, nil, nil, nil)

	in := umojaInput()
	in.GroupName = "  Umoja Chama "
	in.ChairmanEmail = " asha@x.com\n"

	res, err := wf.Register(context.Background(), session.New(), in)
	require.NoError(t, err)
	assert.Equal(t, "Umoja Chama", res.Group.Name)
	assert.Equal(t, "asha@x.com", res.Chairman.Email)
}

func TestRegister_WeakCredential(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"too short", "short"},
		{"spaces only", "        "},
		{"mixed whitespace", " \t \n \t \n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			wf := newWorkflow(t, store, nil, nil)
			sess := session.New()

			in := umojaInput()
			in.ChairmanPassword = tt.password

			res, err := wf.Register(context.Background(), sess, in)
			assert.Nil(t, res)

			var werr *domain.WeakCredentialError
			require.ErrorAs(t, err, &werr)
			assert.Equal(t, "chairman_password", werr.Field)

			_, ok := sess.CurrentIdentity()
			assert.False(t, ok)
			assert.Empty(t, store.groups)
		})
	}
}

func TestRegister_PasswordWithInnerSpacesAccepted(t *testing.T) {
	wf := newWorkflow(t, nil, nil, nil)

	in := umojaInput()
	in.ChairmanPassword = " harambee 2026 "

	_, err := wf.Register(context.Background(), session.New(), in)
	assert.NoError(t, err)
}

func TestRegister_PolicyFromConfiguration(t *testing.T) {
	wf, err := NewWorkflow(Policy{MinSecretLength: 12}, nil, nil, nil)
	require.NoError(t, err)

	_, err = wf.Register(context.Background(), session.New(), umojaInput())
	var werr *domain.WeakCredentialError
	assert.ErrorAs(t, err, &werr)

	wf, err = NewWorkflow(Policy{}, nil, nil, nil)
	require.NoError(t, err)
	_, err = wf.Register(context.Background(), session.New(), umojaInput())
	assert.NoError(t, err)
}

func TestRegister_DuplicateOfficerEmail(t *testing.T) {
	wf := newWorkflow(t, nil, nil, nil)
	sess := session.New()

	in := umojaInput()
	in.TreasurerEmail = "ASHA@x.com"

	res, err := wf.Register(context.Background(), sess, in)
	assert.Nil(t, res)

	var derr *domain.DuplicateEmailError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "treasurer_email", derr.Field)

	_, ok := sess.CurrentIdentity()
	assert.False(t, ok)
}

func TestRegister_EmailAlreadyRegistered(t *testing.T) {
	dir := &fakeDirectory{emails: map[string]bool{"beno@x.com": true}}
	wf := newWorkflow(t, nil, nil, dir)

	_, err := wf.Register(context.Background(), session.New(), umojaInput())
	var derr *domain.DuplicateEmailError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "secretary_email", derr.Field)
}

func TestRegister_DirectoryFailureRejects(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("connection refused")}
	wf := newWorkflow(t, nil, nil, dir)
	sess := session.New()

	res, err := wf.Register(context.Background(), sess, umojaInput())
	assert.Nil(t, res)

	var perr *domain.PersistenceError
	assert.ErrorAs(t, err, &perr)
	_, ok := sess.CurrentIdentity()
	assert.False(t, ok)
}

func TestRegister_PersistenceFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("tx aborted")}
	inviter := &fakeInviter{}
	wf := newWorkflow(t, store, inviter, nil)
	sess := session.New()

	res, err := wf.Register(context.Background(), sess, umojaInput())
	require.NotNil(t, res)
	assert.False(t, res.Persisted)

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.EqualError(t, errors.Unwrap(perr), "tx aborted")

	// logically registered: chairman is in session, but nobody is invited to an unsaved group
	current, ok := sess.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, res.Chairman.ID, current.ID)
	assert.Empty(t, inviter.invited)
}

func TestRegister_InvitationFailureIsNotFatal(t *testing.T) {
	inviter := &fakeInviter{failFor: domain.RoleSecretary}
	wf := newWorkflow(t, &fakeStore{}, inviter, nil)

	res, err := wf.Register(context.Background(), session.New(), umojaInput())
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	require.Len(t, res.InvitationErrors, 1)
	require.Len(t, inviter.invited, 1)
	assert.Equal(t, domain.RoleTreasurer, inviter.invited[0].Role)
}

func TestRegister_UniqueIDs(t *testing.T) {
	wf := newWorkflow(t, nil, nil, nil)
	sess := session.New()

	const n = 10000
	seen := make(map[string]struct{}, 2*n)
	for i := 0; i < n; i++ {
		res, err := wf.Register(context.Background(), sess, umojaInput())
		require.NoError(t, err)

		for _, id := range []string{res.Group.ID, res.Chairman.ID} {
			_, dup := seen[id]
			require.False(t, dup, "id %s allocated twice", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, 2*n)
}

func TestRegister_ConcurrentUniqueIDs(t *testing.T) {
	wf := newWorkflow(t, &fakeStore{}, nil, nil)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[string]struct{})
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				res, err := wf.Register(context.Background(), session.New(), umojaInput())
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[res.Group.ID] = struct{}{}
				seen[res.Chairman.ID] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 8*200*2)
}
