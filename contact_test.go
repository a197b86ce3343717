package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactProcess(t *testing.T) {
	calls := 0
	cc := NewContactController(SubmitterFunc(func(ctx context.Context, form ContactForm) error {
		calls++
		return nil
	}))
	full := ContactForm{Name: "Ada", Email: "ada@example.com", Message: "Hello"}

	for _, form := range []ContactForm{
		{Email: full.Email, Message: full.Message},
		{Name: full.Name, Message: full.Message},
		{Name: full.Name, Email: full.Email},
	} {
		view := cc.Process(context.Background(), form)
		assert.Equal(t, statusRejected, view.Status)
		assert.Equal(t, form, view.Form, "entered values are kept")
	}
	assert.Equal(t, 0, calls, "rejected forms are never submitted")

	view := cc.Process(context.Background(), full)
	assert.Equal(t, statusSent, view.Status)
	assert.Equal(t, ContactForm{}, view.Form)
	assert.Equal(t, 1, calls)
}

func TestContactProcessWhitespaceIsAccepted(t *testing.T) {
	cc := NewContactController(NewDelaySubmitter(0))
	view := cc.Process(context.Background(), ContactForm{Name: " ", Email: " ", Message: " "})
	assert.Equal(t, statusSent, view.Status)
}

func TestContactProcessFailure(t *testing.T) {
	cc := NewContactController(SubmitterFunc(func(ctx context.Context, form ContactForm) error {
		return errors.New("backend down")
	}))
	form := ContactForm{Name: "Ada", Email: "ada@example.com", Message: "Hello"}

	view := cc.Process(context.Background(), form)
	assert.Equal(t, statusFailed, view.Status)
	assert.Equal(t, form, view.Form)
}

func TestDelaySubmitter(t *testing.T) {
	require.NoError(t, NewDelaySubmitter(time.Millisecond).Submit(context.Background(), ContactForm{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewDelaySubmitter(time.Hour).Submit(ctx, ContactForm{})
	assert.ErrorIs(t, err, context.Canceled)
}

func contactValues(name, email, message string) url.Values {
	return url.Values{"name": {name}, "email": {email}, "message": {message}}
}

func TestContactEndpointRejects(t *testing.T) {
	_, r := newTestSite(t, testSiteOptions{})

	w := serve(r, htmxRequest(http.MethodPost, "/contact", contactValues("Ada", "ada@example.com", "")))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Please fill all required fields.")
	assert.Contains(t, body, `name="name" value="Ada"`)
	assert.Contains(t, body, `name="email" value="ada@example.com"`)
}

func TestContactEndpointSends(t *testing.T) {
	_, r := newTestSite(t, testSiteOptions{})

	body := serve(r, htmxRequest(http.MethodPost, "/contact", contactValues("Ada", "ada@example.com", "Hello"))).Body.String()
	assert.Contains(t, body, "Thanks! Your message has been sent.")
	assert.Contains(t, body, `name="name" value=""`)
	assert.Contains(t, body, `name="email" value=""`)
	assert.Contains(t, body, `<textarea name="message" rows="5"></textarea>`)
	assert.NotContains(t, body, "<html")
}

func TestContactEndpointFailure(t *testing.T) {
	_, r := newTestSite(t, testSiteOptions{
		submitter: SubmitterFunc(func(ctx context.Context, form ContactForm) error {
			return errors.New("smtp unavailable")
		}),
	})

	body := serve(r, htmxRequest(http.MethodPost, "/contact", contactValues("Ada", "ada@example.com", "Hello"))).Body.String()
	assert.Contains(t, body, "Something went wrong. Please try again later.")
	assert.Contains(t, body, `<textarea name="message" rows="5">Hello</textarea>`)
}

func TestContactEndpointWithoutHTMXRendersPage(t *testing.T) {
	_, r := newTestSite(t, testSiteOptions{})

	req := htmxRequest(http.MethodPost, "/contact", contactValues("", "", ""))
	req.Header.Del("HX-Request")
	body := serve(r, req).Body.String()
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, "Please fill all required fields.")
}

func TestContactEndpointWithoutHTMXRedirectsAfterSend(t *testing.T) {
	calls := 0
	_, r := newTestSite(t, testSiteOptions{
		submitter: SubmitterFunc(func(ctx context.Context, form ContactForm) error {
			calls++
			return nil
		}),
	})

	req := htmxRequest(http.MethodPost, "/contact", contactValues("Ada", "ada@example.com", "Hello"))
	req.Header.Del("HX-Request")
	w := serve(r, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?contact=sent#contact", w.Header().Get("Location"))
	assert.Equal(t, 1, calls)

	// Reloading the landing page is a GET and sends nothing.
	w = serve(r, httptest.NewRequest(http.MethodGet, "/?contact=sent", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Thanks! Your message has been sent.")
	assert.Contains(t, w.Body.String(), `name="name" value=""`)
	assert.Equal(t, 1, calls)

	body := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.NotContains(t, body, "Thanks! Your message has been sent.")
}
