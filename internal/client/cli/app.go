// Package cli is the terminal front end for the registration wizard: it walks
// the controller through the five steps, shows validation feedback inline,
// and handles login once an account exists.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"signupflow/internal/client/api"
	"signupflow/internal/client/controller"
	"signupflow/internal/client/draft"
	"signupflow/internal/client/upload"
	"signupflow/internal/dto"
	"signupflow/internal/rules"
)

type App struct {
	api        *api.Client
	controller *controller.Controller
	photos     *upload.Handler
	reader     *bufio.Reader
	out        io.Writer
}

// apiAdapter narrows the HTTP client to what the controller consumes.
type apiAdapter struct {
	c *api.Client
}

func (a apiAdapter) CheckEmail(ctx context.Context, email string) (bool, error) {
	return a.c.CheckEmail(ctx, email)
}

func (a apiAdapter) Register(ctx context.Context, req dto.RegisterRequest) (*controller.Outcome, error) {
	out, err := a.c.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return &controller.Outcome{
		OK:          out.OK,
		Message:     out.Message,
		RedirectURL: out.RedirectURL,
		Errors:      out.Errors,
	}, nil
}

func NewApp(ctx context.Context, serverURL string) (*App, error) {
	client, err := api.New(ctx, serverURL)
	if err != nil {
		return nil, err
	}

	draftPath, err := draft.DefaultPath()
	if err != nil {
		return nil, err
	}
	store := draft.NewStore(draftPath)

	ctrl := controller.New(apiAdapter{client}, store)
	photos := upload.NewHandler(client)
	photos.SetCallbacks(ctrl.AttachPhoto, nil)
	photos.Restore(ctrl.Draft().PhotoURL)

	return &App{
		api:        client,
		controller: ctrl,
		photos:     photos,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	for {
		choice, err := GetSimpleText(a.reader, "\n[r]egister  [l]ogin  [q]uit", a.out)
		if err != nil {
			return err
		}
		switch strings.ToLower(choice) {
		case "r", "register":
			if err := a.register(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				fmt.Fprintf(a.out, "error: %v\n", err)
			}
		case "l", "login":
			if err := a.login(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				fmt.Fprintf(a.out, "error: %v\n", err)
			}
		case "q", "quit", "exit":
			return nil
		}
	}
}

// register walks the wizard from wherever the draft left off.
func (a *App) register(ctx context.Context) error {
	if a.controller.Step() > rules.FirstStep {
		fmt.Fprintf(a.out, "Resuming registration at step %d of %d\n",
			a.controller.Step(), rules.LastStep)
	}

	for {
		var err error
		switch a.controller.Step() {
		case rules.StepAccount:
			err = a.stepAccount(ctx)
		case rules.StepContact:
			err = a.stepContact()
		case rules.StepPersonal:
			err = a.stepPersonal()
		case rules.StepPhoto:
			err = a.stepPhoto(ctx)
		case rules.StepReview:
			done, rerr := a.stepReview(ctx)
			if rerr != nil {
				return rerr
			}
			if done {
				return nil
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := a.controller.Next(); err != nil {
			var serr *controller.StepError
			if errors.As(err, &serr) {
				a.printFieldErrors(serr.Fields)
				continue
			}
			return err
		}
	}
}

func (a *App) stepAccount(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n-- Step 1 of 5: account --")

	name, err := GetSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	a.controller.SetField(rules.FieldFullName, name)

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	a.controller.SetField(rules.FieldEmail, email)
	if msg := a.controller.FieldBlur(rules.FieldEmail); msg != "" {
		fmt.Fprintf(a.out, "  ! %s\n", msg)
	} else {
		a.probeEmail(ctx)
	}

	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	label, _ := a.controller.PasswordKeystroke(password)
	fmt.Fprintf(a.out, "  strength: %s\n", label)

	confirm, err := GetPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	if !a.controller.ConfirmKeystroke(confirm) {
		fmt.Fprintln(a.out, "  ! Passwords do not match")
	}
	return nil
}

// probeEmail runs the uniqueness check and waits briefly for the answer so
// the user sees "already registered" before typing a password for nothing.
func (a *App) probeEmail(ctx context.Context) {
	done := make(chan bool, 1)
	a.controller.SetOnEmailResult(func(_ string, taken bool) { done <- taken })
	defer a.controller.SetOnEmailResult(nil)

	a.controller.CheckEmailAsync(ctx)
	select {
	case taken := <-done:
		if taken {
			fmt.Fprintln(a.out, "  ! This email is already registered")
		}
	case <-ctx.Done():
	}
}

func (a *App) stepContact() error {
	fmt.Fprintln(a.out, "\n-- Step 2 of 5: contact --")

	phone, err := GetSimpleText(a.reader, "Phone number", a.out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "  recorded as: %s\n", a.controller.PhoneKeystroke(phone))

	a.printCountries()
	country, err := GetSimpleText(a.reader, "Country code (e.g. DE)", a.out)
	if err != nil {
		return err
	}
	a.controller.SetField(rules.FieldCountry, strings.ToUpper(country))

	city, err := GetSimpleText(a.reader, "City (optional)", a.out)
	if err != nil {
		return err
	}
	a.controller.SetField(rules.FieldCity, city)
	return nil
}

func (a *App) stepPersonal() error {
	fmt.Fprintln(a.out, "\n-- Step 3 of 5: about you --")

	gender, err := GetSimpleText(a.reader, "Gender (male/female/other, optional)", a.out)
	if err != nil {
		return err
	}
	a.controller.SetField(rules.FieldGender, gender)

	dob, err := GetSimpleText(a.reader, "Date of birth (YYYY-MM-DD, optional)", a.out)
	if err != nil {
		return err
	}
	a.controller.SetField(rules.FieldDateOfBirth, dob)

	interests, err := GetCommaList(a.reader, "Interests (comma separated, at least one)", a.out)
	if err != nil {
		return err
	}
	a.controller.SetInterests(interests)
	return nil
}

func (a *App) stepPhoto(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n-- Step 4 of 5: profile photo --")
	if url := a.controller.Draft().PhotoURL; url != "" {
		keep, err := GetYesNo(a.reader, "Keep current photo ("+url+")?", true, a.out)
		if err != nil {
			return err
		}
		if keep {
			return nil
		}
	}

	path, err := GetSimpleText(a.reader, "Path to image file", a.out)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "  ! cannot read file: %v\n", err)
		return nil
	}

	stored := make(chan string, 1)
	failed := make(chan error, 1)
	a.photos.SetCallbacks(
		func(url string) {
			a.controller.AttachPhoto(url)
			stored <- url
		},
		func(err error) { failed <- err },
	)

	contentType := contentTypeByExt(path)
	if err := a.photos.Select(ctx, filepath.Base(path), contentType, data); err != nil {
		fmt.Fprintf(a.out, "  ! %v\n", err)
		return nil
	}

	select {
	case url := <-stored:
		fmt.Fprintf(a.out, "  uploaded: %s\n", url)
	case err := <-failed:
		fmt.Fprintf(a.out, "  ! upload failed: %v\n", err)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (a *App) stepReview(ctx context.Context) (bool, error) {
	fmt.Fprintln(a.out, "\n-- Step 5 of 5: review --")
	r := a.controller.Review()
	fmt.Fprintf(a.out, "  Name:      %s\n", r.FullName)
	fmt.Fprintf(a.out, "  Email:     %s\n", r.Email)
	fmt.Fprintf(a.out, "  Phone:     %s\n", r.PhoneNumber)
	fmt.Fprintf(a.out, "  Country:   %s\n", r.Country)
	if r.City != "" {
		fmt.Fprintf(a.out, "  City:      %s\n", r.City)
	}
	if r.Gender != "" {
		fmt.Fprintf(a.out, "  Gender:    %s\n", r.Gender)
	}
	if r.DateOfBirth != "" {
		fmt.Fprintf(a.out, "  Born:      %s\n", r.DateOfBirth)
	}
	fmt.Fprintf(a.out, "  Interests: %s\n", strings.Join(r.Interests, ", "))
	fmt.Fprintf(a.out, "  Photo:     %s\n", r.PhotoURL)

	submit, err := GetYesNo(a.reader, "Submit registration?", true, a.out)
	if err != nil {
		return false, err
	}
	if !submit {
		a.controller.Back()
		return false, nil
	}

	out, err := a.controller.SubmitFinal(ctx)
	if err != nil {
		var serr *controller.StepError
		if errors.As(err, &serr) {
			fmt.Fprintf(a.out, "Back to step %d:\n", serr.Step)
			a.printFieldErrors(serr.Fields)
			return false, nil
		}
		return false, err
	}
	if !out.OK {
		// Rejected without field placement (e.g. a degraded generic failure);
		// the draft is intact, let the user retry.
		fmt.Fprintf(a.out, "! %s\n", out.Message)
		return false, nil
	}
	fmt.Fprintf(a.out, "%s\n", out.Message)
	return true, nil
}

func (a *App) login(ctx context.Context) error {
	identifier, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	remember, err := GetYesNo(a.reader, "Stay signed in?", false, a.out)
	if err != nil {
		return err
	}

	out, err := a.api.Login(ctx, identifier, password, remember)
	if err != nil {
		return err
	}
	if !out.OK {
		fmt.Fprintf(a.out, "! %s\n", out.Message)
		return nil
	}
	fmt.Fprintf(a.out, "%s\n", out.Message)
	return nil
}

func (a *App) printFieldErrors(errs rules.FieldErrors) {
	for field, msg := range errs {
		fmt.Fprintf(a.out, "  ! %s: %s\n", field, msg)
	}
}

func (a *App) printCountries() {
	fmt.Fprintln(a.out, "Countries:")
	for _, c := range a.api.Countries() {
		fmt.Fprintf(a.out, "  %s  %-20s %s\n", c.Code, c.Name, c.PhoneCode)
	}
}

func contentTypeByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
