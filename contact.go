package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrMissingFields is returned when name, email or message is empty.
var ErrMissingFields = errors.New("missing required fields")

const (
	statusRejected = "Please fill all required fields."
	statusSent     = "Thanks! Your message has been sent."
	statusFailed   = "Something went wrong. Please try again later."
)

// contactSentURL is where a plain form post lands after a successful send.
const contactSentURL = "/?contact=sent#contact"

// ContactForm is bound from the posted form. Only an empty string is
// rejected; whitespace passes.
type ContactForm struct {
	Name    string `form:"name" binding:"required"`
	Email   string `form:"email" binding:"required"`
	Message string `form:"message" binding:"required"`
}

func (f ContactForm) Validate() error {
	if f.Name == "" || f.Email == "" || f.Message == "" {
		return ErrMissingFields
	}
	return nil
}

// ContactView is the form as it should be shown after a submit.
type ContactView struct {
	Form   ContactForm
	Status string
}

// Submitter delivers a validated contact message.
type Submitter interface {
	Submit(ctx context.Context, form ContactForm) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, form ContactForm) error

func (f SubmitterFunc) Submit(ctx context.Context, form ContactForm) error {
	return f(ctx, form)
}

// delaySubmitter pretends to send after a fixed delay and always succeeds
// unless ctx ends first.
type delaySubmitter struct {
	delay time.Duration
}

func NewDelaySubmitter(delay time.Duration) Submitter {
	return delaySubmitter{delay: delay}
}

func (d delaySubmitter) Submit(ctx context.Context, _ ContactForm) error {
	t := time.NewTimer(d.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type ContactController struct {
	submitter Submitter
	// page renders the full page for non-HTMX posts.
	page func(c *gin.Context, contact ContactView)
}

func NewContactController(submitter Submitter) *ContactController {
	return &ContactController{submitter: submitter}
}

// Process validates and submits form. Rejected and failed submissions keep
// the entered values; a sent one clears them.
func (cc *ContactController) Process(ctx context.Context, form ContactForm) ContactView {
	if err := form.Validate(); err != nil {
		return ContactView{Form: form, Status: statusRejected}
	}
	if err := cc.submitter.Submit(ctx, form); err != nil {
		log.Printf("contact submission failed: %v", err)
		return ContactView{Form: form, Status: statusFailed}
	}
	return ContactView{Status: statusSent}
}

func (cc *ContactController) Register(r gin.IRoutes) {
	r.POST("/contact", func(c *gin.Context) {
		var form ContactForm
		var view ContactView
		if err := c.ShouldBind(&form); err != nil {
			view = ContactView{Form: form, Status: statusRejected}
		} else {
			view = cc.Process(c.Request.Context(), form)
		}

		if isHTMX(c) || cc.page == nil {
			c.HTML(http.StatusOK, "contact.html", view)
			return
		}
		// A sent message redirects so reloading the result cannot post it
		// again. Rejected and failed forms render in place to keep the values.
		if view.Status == statusSent {
			c.Redirect(http.StatusSeeOther, contactSentURL)
			return
		}
		cc.page(c, view)
	})
}
