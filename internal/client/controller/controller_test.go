package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"signupflow/internal/client/draft"
	"signupflow/internal/dto"
	"signupflow/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	checkFn    func(email string) (bool, error)
	registerFn func(req dto.RegisterRequest) (*Outcome, error)
}

func (s *stubAPI) CheckEmail(ctx context.Context, email string) (bool, error) {
	if s.checkFn == nil {
		return false, nil
	}
	return s.checkFn(email)
}

func (s *stubAPI) Register(ctx context.Context, req dto.RegisterRequest) (*Outcome, error) {
	return s.registerFn(req)
}

type memStore struct {
	saved   *draft.Draft
	cleared bool
}

func (m *memStore) Load() *draft.Draft {
	if m.saved == nil {
		return draft.Fresh()
	}
	d := *m.saved
	return &d
}

func (m *memStore) Save(d *draft.Draft) error {
	cp := *d
	m.saved = &cp
	m.cleared = false
	return nil
}

func (m *memStore) Clear() error {
	m.saved = nil
	m.cleared = true
	return nil
}

func fillValid(c *Controller) {
	c.SetField(rules.FieldFullName, "Jane Doe")
	c.SetField(rules.FieldEmail, "jane@x.com")
	c.SetField(rules.FieldPassword, "Abcdef12")
	c.SetField(rules.FieldConfirmPassword, "Abcdef12")
	c.SetField(rules.FieldPhoneNumber, "+4930123456")
	c.SetField(rules.FieldCountry, "DE")
	c.SetInterests([]string{"tech"})
	c.AttachPhoto("http://cdn/p/abc.jpg")
}

func TestNextBlocksOnInvalidStep(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})

	err := c.Next()
	var serr *StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, rules.StepAccount, serr.Step)
	assert.Equal(t, "Email is required", serr.Fields[rules.FieldEmail])
	assert.Equal(t, rules.StepAccount, c.Step())
}

func TestNextAdvancesThroughAllSteps(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)

	for want := rules.StepContact; want <= rules.StepReview; want++ {
		require.NoError(t, c.Next())
		assert.Equal(t, want, c.Step())
	}
	// Next on the review step stays put.
	require.NoError(t, c.Next())
	assert.Equal(t, rules.StepReview, c.Step())
}

func TestBackNeverValidates(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)
	require.NoError(t, c.Next())

	c.SetField(rules.FieldPhoneNumber, "")
	c.Back()
	assert.Equal(t, rules.StepAccount, c.Step())
	c.Back()
	assert.Equal(t, rules.StepAccount, c.Step())
}

func TestRestoreLandsOnExactStep(t *testing.T) {
	store := &memStore{saved: &draft.Draft{
		FullName:    "Jane Doe",
		Email:       "jane@x.com",
		CurrentStep: rules.StepPersonal,
	}}
	api := &stubAPI{checkFn: func(string) (bool, error) {
		t.Fatal("restore must not probe the network")
		return false, nil
	}}

	c := New(api, store)
	assert.Equal(t, rules.StepPersonal, c.Step())
	assert.Empty(t, c.FieldErrors())
	assert.Equal(t, "jane@x.com", c.Draft().Email)
}

func TestEmailTakenBlocksNext(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)

	c.resolveEmailCheck("jane@x.com", true, nil)

	err := c.Next()
	var serr *StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "This email is already registered", serr.Fields[rules.FieldEmail])
	assert.Equal(t, rules.StepAccount, c.Step())
}

func TestEmailTakenBlocksSubmitFinal(t *testing.T) {
	api := &stubAPI{registerFn: func(req dto.RegisterRequest) (*Outcome, error) {
		t.Fatal("submit must not reach the server with a known taken email")
		return nil, nil
	}}
	c := New(api, &memStore{})
	fillValid(c)
	c.resolveEmailCheck("jane@x.com", true, nil)

	_, err := c.SubmitFinal(context.Background())
	var serr *StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, rules.StepAccount, serr.Step)
	assert.Equal(t, rules.StepAccount, c.Step())
}

func TestStaleEmailResultIsDropped(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)

	// The probe for the old address resolves after the user already moved on.
	c.SetField(rules.FieldEmail, "jane.new@x.com")
	c.resolveEmailCheck("jane@x.com", true, nil)

	assert.Empty(t, c.FieldErrors()[rules.FieldEmail])
	require.NoError(t, c.Next())
}

func TestEditingEmailResetsTakenFlag(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)
	c.resolveEmailCheck("jane@x.com", true, nil)

	c.SetField(rules.FieldEmail, "other@x.com")
	require.NoError(t, c.Next())
}

func TestEmailProbeErrorIsIgnored(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)

	c.resolveEmailCheck("jane@x.com", false, errors.New("network down"))
	assert.Empty(t, c.FieldErrors())
	require.NoError(t, c.Next())
}

func TestEmailCallbackSwapWhileProbeResolves(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)

	// The CLI installs the callback before a probe and removes it afterwards;
	// both must be safe against a probe goroutine resolving mid-swap.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.SetOnEmailResult(func(string, bool) {})
			c.SetOnEmailResult(nil)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.resolveEmailCheck("jane@x.com", false, nil)
		}
	}()
	wg.Wait()
}

func TestSubmitFinalNavigatesToLowestFailingStep(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)
	// Break step 1 and step 3 at once; the wizard must land on step 1.
	c.SetField(rules.FieldEmail, "not-an-email")
	c.SetInterests(nil)

	out, err := c.SubmitFinal(context.Background())
	assert.Nil(t, out)
	var serr *StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, rules.StepAccount, serr.Step)
	assert.Equal(t, rules.StepAccount, c.Step())
	assert.NotEmpty(t, serr.Fields[rules.FieldEmail])
	assert.NotEmpty(t, serr.Fields[rules.FieldInterests])
}

func TestSubmitFinalSuccessClearsDraft(t *testing.T) {
	store := &memStore{}
	api := &stubAPI{registerFn: func(req dto.RegisterRequest) (*Outcome, error) {
		assert.Equal(t, "jane@x.com", req.Email)
		assert.Equal(t, "http://cdn/p/abc.jpg", req.ProfilePhoto)
		return &Outcome{OK: true, Message: "welcome", RedirectURL: "/welcome"}, nil
	}}
	c := New(api, store)
	fillValid(c)

	out, err := c.SubmitFinal(context.Background())
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.True(t, store.cleared)
	assert.Equal(t, rules.StepAccount, c.Step())
	assert.Empty(t, c.Draft().Email)
}

func TestSubmitFinalPlacesServerFieldErrors(t *testing.T) {
	api := &stubAPI{registerFn: func(req dto.RegisterRequest) (*Outcome, error) {
		return &Outcome{Errors: rules.FieldErrors{
			rules.FieldEmail: "This email is already registered",
		}}, nil
	}}
	store := &memStore{}
	c := New(api, store)
	fillValid(c)
	require.NoError(t, c.Next()) // move off step 1 to prove navigation back

	_, err := c.SubmitFinal(context.Background())
	var serr *StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, rules.StepAccount, serr.Step)
	assert.Equal(t, rules.StepAccount, c.Step())
	assert.Equal(t, "This email is already registered", c.FieldErrors()[rules.FieldEmail])
	assert.False(t, store.cleared)
}

func TestSubmitFinalTransportErrorKeepsDraft(t *testing.T) {
	api := &stubAPI{registerFn: func(req dto.RegisterRequest) (*Outcome, error) {
		return nil, errors.New("connection refused")
	}}
	store := &memStore{}
	c := New(api, store)
	fillValid(c)

	_, err := c.SubmitFinal(context.Background())
	require.Error(t, err)
	assert.False(t, store.cleared)
	assert.Equal(t, "jane@x.com", c.Draft().Email)
}

func TestFieldBlurRevalidatesSingleField(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})

	c.SetField(rules.FieldEmail, "bad")
	assert.Equal(t, "Please enter a valid email address", c.FieldBlur(rules.FieldEmail))

	c.SetField(rules.FieldEmail, "jane@x.com")
	assert.Empty(t, c.FieldBlur(rules.FieldEmail))
	assert.Empty(t, c.FieldErrors()[rules.FieldEmail])
}

func TestPhoneKeystrokeSanitizes(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	assert.Equal(t, "+4930123456", c.PhoneKeystroke("+49 (30) 123-456"))
	assert.Equal(t, "+4930123456", c.Draft().PhoneNumber)
}

func TestPasswordKeystrokeStrengthAndMatch(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})

	label, matches := c.PasswordKeystroke("abcdefgh")
	assert.Equal(t, "weak", label)
	assert.True(t, matches) // empty confirm never flags a mismatch

	c.ConfirmKeystroke("different")
	_, matches = c.PasswordKeystroke("Abcdef12!")
	assert.False(t, matches)

	assert.True(t, c.ConfirmKeystroke("Abcdef12!"))
}

func TestReviewHidesPasswordMaterial(t *testing.T) {
	c := New(&stubAPI{}, &memStore{})
	fillValid(c)

	r := c.Review()
	assert.Empty(t, r.Password)
	assert.Empty(t, r.ConfirmPassword)
	assert.Equal(t, "Jane Doe", r.FullName)
}

func TestDraftPersistsOnEveryMutation(t *testing.T) {
	store := &memStore{}
	c := New(&stubAPI{}, store)
	c.SetField(rules.FieldFullName, "Jane Doe")
	require.NotNil(t, store.saved)
	assert.Equal(t, "Jane Doe", store.saved.FullName)

	require.Error(t, c.Next())
	fillValid(c)
	require.NoError(t, c.Next())
	assert.Equal(t, rules.StepContact, store.saved.CurrentStep)
}
